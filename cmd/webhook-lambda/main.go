package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	_ "time/tzdata"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/whatsauto-webhook/cmd/mainconfig"
	"github.com/wolfman30/whatsauto-webhook/internal/app/bootstrap"
	appconfig "github.com/wolfman30/whatsauto-webhook/internal/config"
	"github.com/wolfman30/whatsauto-webhook/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	source, err := mainconfig.CredentialSource(ctx, cfg, logger)
	if err != nil {
		panic(err)
	}
	wh, err := bootstrap.BuildWebhook(ctx, cfg, source, logger)
	if err != nil {
		panic(err)
	}
	_ = wh.Calendar.Warm()

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, wh.Handler, evt)
	})
}

// handle replays an API Gateway HTTP API event through the same router the
// standalone server uses.
func handle(ctx context.Context, h http.Handler, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	if method == "" {
		method = http.MethodGet
	}

	body, err := decodeBody(evt)
	if err != nil {
		return errorResponse(http.StatusBadRequest, "Não foi possível ler o corpo da requisição", err.Error()), nil
	}

	target := requestPath(evt)
	if qs := strings.TrimSpace(evt.RawQueryString); qs != "" {
		target += "?" + qs
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return errorResponse(http.StatusBadRequest, "Requisição inválida", err.Error()), nil
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}
	if host := strings.TrimSpace(evt.RequestContext.DomainName); host != "" {
		req.Host = host
	}
	if ip := strings.TrimSpace(evt.RequestContext.HTTP.SourceIP); ip != "" {
		req.RemoteAddr = ip
	}
	if id := strings.TrimSpace(evt.RequestContext.RequestID); id != "" && req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", id)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return toResponse(rec), nil
}

// requestPath drops a named stage prefix; the $default stage has none.
func requestPath(evt events.APIGatewayV2HTTPRequest) string {
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}
	if stage := evt.RequestContext.Stage; stage != "" && stage != "$default" {
		prefix := "/" + stage
		if path == prefix {
			path = "/"
		} else if strings.HasPrefix(path, prefix+"/") {
			path = strings.TrimPrefix(path, prefix)
		}
	}
	if path == "" {
		path = "/"
	}
	return path
}

func toResponse(rec *httptest.ResponseRecorder) events.APIGatewayV2HTTPResponse {
	out := events.APIGatewayV2HTTPResponse{
		StatusCode: rec.Code,
		Headers:    map[string]string{},
	}
	for k, values := range rec.Header() {
		out.Headers[strings.ToLower(k)] = strings.Join(values, ", ")
	}
	raw := rec.Body.Bytes()
	if utf8.Valid(raw) {
		out.Body = string(raw)
	} else {
		out.Body = base64.StdEncoding.EncodeToString(raw)
		out.IsBase64Encoded = true
	}
	return out
}

func errorResponse(status int, summary, details string) events.APIGatewayV2HTTPResponse {
	payload, _ := json.Marshal(map[string]string{"error": summary, "details": details})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(payload),
	}
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(evt.Body)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}
