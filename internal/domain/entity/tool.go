package entity

type ToolName string

const (
	ToolPageObserve    ToolName = "page_observe"
	ToolPageUISummary  ToolName = "page_ui_summary"
	ToolPageClick      ToolName = "page_click"
	ToolPageFill       ToolName = "page_fill"
	ToolPagePressKey   ToolName = "page_press_enter"
	ToolPageScroll     ToolName = "page_scroll"
	ToolPageScreenshot ToolName = "page_screenshot"
)

func (t ToolName) String() string {
	return string(t)
}
