package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client はサービス間通信用のHTTPクライアント。
// タイムアウトとセッション情報の伝播設定を持つ。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先サービスのベースURL。
	baseURL string
}

// New は新しいサービス間通信用HTTPクライアントを生成する。
// baseURLには接続先のベースURL（例: "http://gateway:8443"）を指定する。
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

// PostJSON は指定パスにJSONボディでPOSTリクエストを送信する。
// レスポンスボディをresultにデシリアライズする。
func (c *Client) PostJSON(ctx context.Context, path string, body any, result any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, result)
}

// GetJSON は指定パスにGETリクエストを送信する。
// レスポンスボディをresultにデシリアライズする。
func (c *Client) GetJSON(ctx context.Context, path string, result any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, result)
}

// doJSON はJSON形式のHTTPリクエストを実行する共通処理。
func (c *Client) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// コンテキストから要求元セッションの情報を伝播する
	if sessionID, ok := ctx.Value(contextKeySessionID).(string); ok {
		req.Header.Set("X-Session-ID", sessionID)
	}
	if token, ok := ctx.Value(contextKeySessionToken).(string); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if token, ok := ctx.Value(contextKeyGatewayToken).(string); ok {
		req.Header.Set("X-Gateway-Token", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTPエラー: status=%d, body=%s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return nil
}

// contextKey はコンテキストキーの型。
type contextKey string

// contextKeySessionID はコンテキストにセッションIDを格納するためのキー。
const contextKeySessionID contextKey = "session_id"

// contextKeySessionToken はコンテキストにセッショントークンを格納するためのキー。
const contextKeySessionToken contextKey = "session_token"

// contextKeyGatewayToken はコンテキストにゲートウェイトークンを格納するためのキー。
const contextKeyGatewayToken contextKey = "gateway_token"

// WithSessionID はコンテキストにセッションIDを設定する。
// サービス間通信時に要求元セッションを伝播するために使用する。
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKeySessionID, sessionID)
}

// WithSessionToken はコンテキストにセッショントークンを設定する。
// 転送先での認可のため、要求元の資格情報をそのまま引き渡す。
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKeySessionToken, token)
}

// WithGatewayToken はコンテキストにゲートウェイトークンを設定する。
// ゲートウェイ経由の送信で、経由するゲートウェイ自身の資格情報を付与する。
func WithGatewayToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKeyGatewayToken, token)
}
