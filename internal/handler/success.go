package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/phlink/internal/domain"
)

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Authorization Successful</title>
    <style>
      body {
        font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
        display: flex;
        align-items: center;
        justify-content: center;
        min-height: 100vh;
        margin: 0;
        background-color: #f5f5f5;
        color: #333;
      }
      .container {
        text-align: center;
        background: white;
        padding: 2rem;
        border-radius: 12px;
        box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);
        max-width: 90%;
        width: 400px;
      }
      h1 { color: #da552f; }
      p { margin: 1rem 0; line-height: 1.5; }
      .success-icon { font-size: 48px; margin-bottom: 1rem; }
      .button {
        display: inline-block;
        background-color: #da552f;
        color: white;
        padding: 12px 24px;
        border-radius: 6px;
        text-decoration: none;
        margin-top: 1rem;
      }
    </style>
  </head>
  <body>
    <div class="container">
      <div class="success-icon">&#9989;</div>
      <h1>Authorization Successful!</h1>
      <p>Your Product Hunt account is now linked as {{.DisplayName}} (@{{.Username}}).</p>
      <p>You can close this window and return to Telegram.</p>
      {{if .BotUsername}}<a href="https://t.me/{{.BotUsername}}" class="button">Return to Telegram</a>{{end}}
    </div>
  </body>
</html>
`))

type successData struct {
	DisplayName string
	Username    string
	BotUsername string
}

func (h *LinkHandler) renderSuccess(c echo.Context, rec *domain.CredentialRecord) error {
	var buf bytes.Buffer
	err := successPage.Execute(&buf, successData{
		DisplayName: rec.DisplayName,
		Username:    rec.Username,
		BotUsername: h.cfg.TelegramBotUsername,
	})
	if err != nil {
		return fmt.Errorf("render success page: %w", err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
