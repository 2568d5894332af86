package rod

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"study-agent/internal/application/port/output"
	"study-agent/internal/domain/entity"
	"study-agent/internal/infrastructure/browser/rodwrapper"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

// BrowserAdapter реализует BrowserPort поверх rod. Подключается либо к
// уже открытому Chrome пользователя (ControlURL), либо запускает свой.
type BrowserAdapter struct {
	browser *rodwrapper.Browser
	page    *rodwrapper.Page
	timeout time.Duration
}

type BrowserConfig struct {
	// ControlURL — DevTools-адрес пользовательского Chrome,
	// например http://localhost:9222. Пустое значение = свой браузер.
	ControlURL string
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   false,
		SlowMotion: 500 * time.Millisecond,
		Timeout:    10 * time.Second,
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	browser, err := rodwrapper.Connect(rodwrapper.ConnectConfig{
		ControlURL: cfg.ControlURL,
		Headless:   cfg.Headless,
		SlowMotion: cfg.SlowMotion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page()
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &BrowserAdapter{
		browser: browser,
		page:    page,
		timeout: cfg.Timeout,
	}, nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	if err := b.page.Navigate(url); err != nil {
		return &entity.TransportError{Op: "navigate", Err: err}
	}
	if err := b.page.WaitLoad(); err != nil {
		return &entity.TransportError{Op: "navigate", Err: err}
	}
	b.page.WaitIdle(5 * time.Second)
	return nil
}

func (b *BrowserAdapter) Click(ctx context.Context, selector string) error {
	el, err := b.findElement(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return &entity.TransportError{Op: "click", Err: err}
	}

	b.page.WaitIdle(2 * time.Second)
	return nil
}

func (b *BrowserAdapter) Fill(ctx context.Context, selector, text string) error {
	el, err := b.findElement(selector)
	if err != nil {
		return fmt.Errorf("field not found: %s: %w", selector, err)
	}

	// сначала чистим поле, иначе текст допишется к старому значению
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}

	if err := el.Input(text); err != nil {
		return &entity.TransportError{Op: "fill", Err: err}
	}

	return nil
}

func (b *BrowserAdapter) PressEnter(ctx context.Context) error {
	el, err := b.page.Element("body")
	if err != nil {
		return &entity.TransportError{Op: "press_enter", Err: err}
	}
	if err := el.Input("\r"); err != nil {
		return &entity.TransportError{Op: "press_enter", Err: err}
	}
	b.page.WaitIdle(1 * time.Second)
	return nil
}

func (b *BrowserAdapter) Scroll(ctx context.Context, direction string) error {
	direction = strings.ToLower(strings.TrimSpace(direction))

	var js string
	switch direction {
	case "down":
		js = `() => window.scrollBy(0, window.innerHeight * 2)`
	case "up":
		js = `() => window.scrollBy(0, -window.innerHeight * 2)`
	case "top":
		js = `() => window.scrollTo(0, 0)`
	case "bottom":
		js = `() => window.scrollTo(0, document.body.scrollHeight)`
	default:
		return fmt.Errorf("unknown scroll direction: %s", direction)
	}

	if _, err := b.page.Eval(js); err != nil {
		return &entity.TransportError{Op: "scroll", Err: err}
	}
	b.page.WaitIdle(800 * time.Millisecond)
	return nil
}

func (b *BrowserAdapter) GetPageContent(ctx context.Context) (*entity.PageContent, error) {
	info, err := b.page.Info()
	if err != nil {
		return nil, &entity.TransportError{Op: "observe", Err: err}
	}

	body, err := b.page.Element("body")
	if err != nil {
		return nil, fmt.Errorf("body not found: %w", err)
	}

	html, err := body.HTML()
	if err != nil {
		return nil, &entity.TransportError{Op: "observe", Err: err}
	}

	elements, err := b.GetUIElements(ctx)
	if err != nil {
		elements = nil
	}

	return &entity.PageContent{
		URL:        info.URL,
		Title:      info.Title,
		HTML:       html,
		UIElements: elements,
	}, nil
}

func (b *BrowserAdapter) GetUIElements(ctx context.Context) ([]entity.UIElement, error) {
	raw, err := rodwrapper.ExtractUI(b.page, nil)
	if err != nil {
		return nil, &entity.TransportError{Op: "ui_summary", Err: err}
	}

	result := make([]entity.UIElement, 0, len(raw))
	for _, el := range raw {
		result = append(result, entity.UIElement{
			ID:        el.ID,
			Type:      el.Type,
			Text:      el.Text,
			AriaLabel: el.AriaLabel,
			Role:      el.Role,
			Selector:  el.Selector,
			Visible:   el.Visible,
		})
	}
	return result, nil
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	imgBytes, err := b.page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, &entity.TransportError{Op: "screenshot", Err: err}
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > 1024 {
		img = imaging.Resize(img, 1024, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) Close() {
	if b.browser != nil {
		b.browser.Close()
	}
}

// findElement принимает как CSS, так и XPath-селекторы.
func (b *BrowserAdapter) findElement(selector string) (*rod.Element, error) {
	if isXPathSelector(selector) {
		return b.page.ElementX(strings.TrimPrefix(selector, "xpath="))
	}
	return b.page.Element(selector)
}

func isXPathSelector(selector string) bool {
	return strings.HasPrefix(selector, "/") ||
		strings.HasPrefix(selector, "(") ||
		strings.HasPrefix(selector, "xpath=")
}
