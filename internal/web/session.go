package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/serena/serena/internal/dashboard"
)

const (
	sessionCookie = "serena_session"
	flashCookie   = "serena_flash"
	sessionKey    = "dashboard_session"
)

const (
	flashSuccess = "success"
	flashError   = "error"
)

type flash struct {
	Kind    string
	Message string
}

// withSession attaches the browser's dashboard session, creating one and
// setting the cookie when needed.
func (s *Server) withSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := ""
		if ck, err := c.Cookie(sessionCookie); err == nil {
			id = ck.Value
		}
		sess, created := s.store.GetOrCreate(id)
		if created {
			c.SetCookie(&http.Cookie{
				Name:     sessionCookie,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.secureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(sessionKey, sess)
		return next(c)
	}
}

func sessionOf(c echo.Context) *dashboard.Session {
	sess, _ := c.Get(sessionKey).(*dashboard.Session)
	return sess
}

// resolveSession maps a websocket connection to a live session id.
func (s *Server) resolveSession(c echo.Context) string {
	ck, err := c.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	if _, ok := s.store.Get(ck.Value); !ok {
		return ""
	}
	return ck.Value
}

func setFlash(c echo.Context, kind, msg string) {
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + "|" + msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the flash cookie.
func popFlash(c echo.Context) *flash {
	ck, err := c.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return nil
	}
	c.SetCookie(&http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	raw, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(raw, "|")
	if !ok || msg == "" {
		return nil
	}
	if kind != flashSuccess {
		kind = flashError
	}
	return &flash{Kind: kind, Message: msg}
}
