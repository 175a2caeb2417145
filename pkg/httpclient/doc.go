// Package httpclient はサービス間のHTTP通信を行うクライアントを提供する。
//
// repartitorサービスがゲートウェイ経由でwebsocketsサービスのインスタンスへ
// メッセージを転送する際に使用する。要求元セッションのIDと資格情報を
// コンテキスト経由でHTTPヘッダーに伝播する。
package httpclient
