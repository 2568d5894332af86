package rodwrapper

import (
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ConnectConfig задаёт способ подключения к Chrome.
type ConnectConfig struct {
	// ControlURL — DevTools-адрес уже запущенного браузера
	// (chrome --remote-debugging-port=9222). Если пуст, браузер
	// запускается самостоятельно.
	ControlURL string
	Headless   bool
	SlowMotion time.Duration
}

// Browser — обёртка над *rod.Browser, которая помнит, кто владеет процессом
// Chrome. Чужой браузер при Close не убиваем.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	owned    bool
}

// Connect подключается к пользовательскому Chrome по ControlURL либо
// запускает собственный экземпляр.
func Connect(cfg ConnectConfig) (*Browser, error) {
	if cfg.ControlURL != "" {
		u, err := launcher.ResolveURL(cfg.ControlURL)
		if err != nil {
			return nil, err
		}
		browser := rod.New().ControlURL(u).SlowMotion(cfg.SlowMotion)
		if err := browser.Connect(); err != nil {
			return nil, err
		}
		return &Browser{browser: browser, owned: false}, nil
	}

	l := launcher.New().
		Headless(cfg.Headless).
		Devtools(false).
		NoSandbox(true).
		Delete("use-mock-keychain").
		Set("disable-web-security").
		Set("allow-running-insecure-content").
		Set("disable-setuid-sandbox")

	u, err := l.Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(u).SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, err
	}

	return &Browser{browser: browser, launcher: l, owned: true}, nil
}

// Page возвращает активную вкладку подключённого браузера, а если её нет —
// открывает новую.
func (b *Browser) Page() (*Page, error) {
	pages, err := b.browser.Pages()
	if err != nil {
		return nil, err
	}
	if len(pages) > 0 {
		return NewPage(pages[0]), nil
	}
	rodPage, err := b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, err
	}
	return NewPage(rodPage), nil
}

// Close отключается от браузера. Процесс Chrome убивается только если он
// был запущен нами.
func (b *Browser) Close() {
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.owned && b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

type Page struct {
	*rod.Page
	defaultTimeout time.Duration
}

func NewPage(rodPage *rod.Page) *Page {
	return &Page{
		Page:           rodPage,
		defaultTimeout: 10 * time.Second,
	}
}

func (p *Page) Element(selector string) (*rod.Element, error) {
	return p.Page.Timeout(p.defaultTimeout).Element(selector)
}

func (p *Page) ElementX(xpath string) (*rod.Element, error) {
	return p.Page.Timeout(p.defaultTimeout).ElementX(xpath)
}
