package rodwrapper

import (
	"fmt"
	"strings"

	"github.com/go-rod/rod"
)

type ExtractConfig struct {
	OnlyInViewport bool
	MaxElements    int
}

var DefaultExtractConfig = ExtractConfig{
	OnlyInViewport: false,
	MaxElements:    500,
}

type UIElement struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Text       string `json:"text"`
	AriaLabel  string `json:"aria_label,omitempty"`
	Role       string `json:"role,omitempty"`
	Checked    bool   `json:"checked,omitempty"`
	Visible    bool   `json:"visible"`
	InViewport bool   `json:"in_viewport"`
	Selector   string `json:"selector"`
}

// квизовые селекторы: варианты ответов, поля ввода, кнопки навигации
var elementGroups = []struct {
	query string
	typ   string
}{
	{"input[type='radio'], [role='radio']", "radio"},
	{"input[type='checkbox'], [role='checkbox']", "checkbox"},
	{"input[type='text'], input[type='number'], input:not([type]), textarea", "input"},
	{"select", "select"},
	{"button, input[type='submit'], [role='button']", "button"},
	{"a", "link"},
	{"label", "label"},
}

// ExtractUI собирает интерактивные элементы страницы с селекторами,
// по которым агент сможет на них воздействовать.
func ExtractUI(page *Page, cfg *ExtractConfig) ([]UIElement, error) {
	if cfg == nil {
		cfg = &DefaultExtractConfig
	}

	var result []UIElement
	counter := 0
	seen := make(map[string]bool)

	add := func(el *rod.Element, typ string) {
		if el == nil || counter >= cfg.MaxElements {
			return
		}

		visible, err := el.Visible()
		if err != nil || !visible {
			return
		}

		inViewport := true
		if cfg.OnlyInViewport {
			// у rod нет IsIntersectingViewport → проверяем через JS
			inView, err := el.Eval(`() => {
				const rect = this.getBoundingClientRect();
				return rect.top < window.innerHeight && rect.bottom >= 0 &&
				rect.left < window.innerWidth && rect.right >= 0;
			}`)
			if err == nil {
				inViewport = inView.Value.Bool()
			}
			if !inViewport {
				return
			}
		}

		selector := bestSelector(el)
		if selector == "" || seen[selector] {
			return
		}
		seen[selector] = true

		text, _ := el.Text()
		text = strings.TrimSpace(text)
		aria, _ := el.Attribute("aria-label")
		role, _ := el.Attribute("role")
		title, _ := el.Attribute("title")
		value, _ := el.Attribute("value")

		// у радиокнопок и чекбоксов текст обычно живёт в соседнем label
		if text == "" && value != nil {
			text = strings.TrimSpace(*value)
		}

		checked := false
		if typ == "radio" || typ == "checkbox" {
			if prop, err := el.Property("checked"); err == nil {
				checked = prop.Bool()
			}
		}

		result = append(result, UIElement{
			ID:         fmt.Sprintf("ui-%04d", counter),
			Type:       typ,
			Text:       text,
			AriaLabel:  firstNonEmpty(ptrToString(aria), ptrToString(title)),
			Role:       ptrToString(role),
			Checked:    checked,
			Visible:    true,
			InViewport: inViewport,
			Selector:   selector,
		})
		counter++
	}

	for _, group := range elementGroups {
		elements, err := page.Page.Elements(group.query)
		if err != nil {
			continue
		}
		for _, el := range elements {
			add(el, group.typ)
		}
	}

	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// bestSelector строит уникальный CSS-путь к элементу. id — лучший вариант,
// иначе путь от корня с nth-of-type.
func bestSelector(el *rod.Element) string {
	res, err := el.Eval(`() => {
		if (this.id) return '#' + CSS.escape(this.id);
		const parts = [];
		let node = this;
		while (node && node.nodeType === Node.ELEMENT_NODE && node.tagName !== 'BODY') {
			let part = node.tagName.toLowerCase();
			let i = 1, sib = node;
			while ((sib = sib.previousElementSibling)) {
				if (sib.tagName === node.tagName) i++;
			}
			part += ':nth-of-type(' + i + ')';
			parts.unshift(part);
			node = node.parentElement;
		}
		return parts.length ? parts.join(' > ') : '';
	}`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func ptrToString(s *string) string {
	if s != nil {
		return *s
	}
	return ""
}
