package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sumire/phlink/internal/config"
	"github.com/sumire/phlink/internal/domain"
	"github.com/sumire/phlink/internal/service"
)

// LinkHandler exposes the account-link flow over HTTP.
type LinkHandler struct {
	svc *service.LinkService
	cfg config.Config
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(svc *service.LinkService, cfg config.Config) *LinkHandler {
	return &LinkHandler{svc: svc, cfg: cfg}
}

// Start redirects the chat to the provider consent page with a fresh state.
func (h *LinkHandler) Start(c echo.Context) error {
	raw := c.QueryParam("chat_id")
	if raw == "" {
		return fmt.Errorf("%w: chat_id", domain.ErrMissingParameter)
	}

	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return &domain.ValidationError{Field: "chat_id", Message: "must be numeric"}
	}

	return c.Redirect(http.StatusTemporaryRedirect, h.svc.BeginLink(chatID))
}

// Callback handles the provider redirect. Parameter and state validation and
// the full missing-configuration check all happen before any outbound call.
func (h *LinkHandler) Callback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return fmt.Errorf("%w: code", domain.ErrMissingParameter)
	}

	rawState := c.QueryParam("state")
	if rawState == "" {
		return fmt.Errorf("%w: state", domain.ErrMissingParameter)
	}

	state, err := domain.DecodeLinkState(rawState)
	if err != nil {
		return err
	}

	if missing := h.cfg.MissingKeys(); len(missing) > 0 {
		return &domain.ConfigError{Missing: missing}
	}

	rec, err := h.svc.CompleteLink(c.Request().Context(), code, state)
	if err != nil {
		return err
	}

	return h.renderSuccess(c, rec)
}

type listQuery struct {
	Limit  int `query:"limit" validate:"gte=1,lte=100"`
	Offset int `query:"offset" validate:"gte=0"`
}

// List returns stored credential records for operators. Tokens are never
// serialized.
func (h *LinkHandler) List(c echo.Context) error {
	q := listQuery{Limit: 50}
	if err := c.Bind(&q); err != nil {
		return &domain.ValidationError{Field: "query", Message: "malformed query parameters"}
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	recs, err := h.svc.ListCredentials(c.Request().Context(), q.Limit, q.Offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"credentials": recs,
		"count":       len(recs),
	})
}

// Get returns the credential linked to one chat.
func (h *LinkHandler) Get(c echo.Context) error {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		return &domain.ValidationError{Field: "chat_id", Message: "must be numeric"}
	}

	rec, err := h.svc.GetCredential(c.Request().Context(), chatID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}
