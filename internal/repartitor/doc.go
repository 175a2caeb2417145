// Package repartitor は通知メッセージ振り分けサービスの内部実装を提供する。
//
// 通知の宛先（アカウント・アカウントのリスト・キャンペーンのメンバー・
// ユーザー名）を具体的なセッションの集合に解決し、各セッションの接続を
// 保持しているwebsocketsインスタンスごとにまとめ、ゲートウェイ経由で
// 各インスタンスへHTTPで転送する。配送はベストエフォートであり、
// 呼び出し元に失敗として報告されるのは宛先の解決失敗のみ。
package repartitor
