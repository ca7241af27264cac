package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/userdata-go/internal/credcache"
	"github.com/mcoot/userdata-go/internal/embed"
	"github.com/mcoot/userdata-go/internal/i18n"
	"github.com/mcoot/userdata-go/internal/menu"
	"github.com/mcoot/userdata-go/internal/web/templates/components"
	"github.com/mcoot/userdata-go/internal/web/templates/layout"
)

// pageFrame records what the handshake did to the frame so it can be
// rendered into HTML.
type pageFrame struct {
	chooser embed.Chooser
	src     string
	hidden  bool
}

func (f *pageFrame) ShowChooser(c embed.Chooser) { f.chooser = c }
func (f *pageFrame) Load(src string)             { f.src = src; f.hidden = false }
func (f *pageFrame) Hide()                       { f.hidden = true }

// hostView is the server-side rendition of one host page: the handshake
// runs against a recording frame and reads the address cookie of the
// request. It also renders the overlay.
type hostView struct {
	lang       string
	frame      *pageFrame
	handshake  *embed.Handshake
	translator *i18n.Translator
	menu       *menu.Model
	overlay    *menu.Overlay

	menuVisible bool
	loggedOut   bool
}

func newHostView(w http.ResponseWriter, r *http.Request, catalogs i18n.Catalogs, logger *slog.Logger) *hostView {
	lang := r.FormValue("lang")
	t := i18n.New(logger)
	if dict, ok := catalogs.Lookup(lang); ok {
		t.SetDictionary(dict)
	}

	v := &hostView{
		lang:       lang,
		frame:      &pageFrame{},
		translator: t,
		menu:       menu.NewModel(),
	}
	v.handshake = embed.NewHandshake(embed.Config{
		Frame:      v.frame,
		Cache:      credcache.New(credcache.NewCookieStore(w, r)),
		Translator: t,
		Menu:       v.menu,
		PageURL:    pageURL(r),
		Logout:     func() { v.loggedOut = true },
		Logger:     logger,
	})
	v.overlay = menu.NewOverlay(v.menu, v)
	v.overlay.AddEscapeHook(v.handshake.HandleEscape)
	return v
}

func (v *hostView) Show([]menu.Row) { v.menuVisible = true }
func (v *hostView) Hide()           { v.menuVisible = false }

// pageURL is the address of the host page as the browser sees it.
func pageURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + "/"
}

func (v *hostView) frameData(gcid string, flash *layout.FlashMessage) components.FrameData {
	return components.FrameData{
		GCID:         gcid,
		Chooser:      v.handshake.Chooser(),
		Src:          v.handshake.Source(),
		Hidden:       v.frame.hidden,
		Flash:        flash,
		ToggleLabel:  v.translator.Translate("Use external userdata server"),
		AddressLabel: v.translator.Translate("Userdata Address: "),
		StoreLabel:   v.translator.Translate("Store server details in cookie"),
	}
}

func (v *hostView) menuData(gcid string) components.MenuData {
	return components.MenuData{
		GCID:         gcid,
		Rows:         v.menu.Rows(),
		Visible:      v.menuVisible,
		SettingsOpen: v.handshake.SettingsVisible(),
	}
}
