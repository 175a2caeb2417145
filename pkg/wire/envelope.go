// Package wire はwebsocketsサービスとの間で交換するメッセージ形式を定義する。
//
// repartitorサービスがゲートウェイ経由でインスタンスへ転送するペイロードを
// 定義する。dataフィールドは本サービスにとって不透明であり、受信した内容を
// そのまま引き渡す。
package wire

import (
	"encoding/json"
	"errors"
)

// Envelope はwebsocketsインスタンスへの転送1回分のペイロードを表す。
// 1つのEnvelopeは同一インスタンスに接続しているセッション群に対応する。
type Envelope struct {
	// SessionIDs は通知先セッションの一意識別子のリスト。空であってはならない。
	SessionIDs []string `json:"session_ids"`
	// InstanceID は転送先websocketsインスタンスの一意識別子。
	InstanceID string `json:"instance_id"`
	// Message は通知の種別を表すメッセージ文字列。
	Message string `json:"message"`
	// Data は通知に付随する任意のデータ（JSON形式、そのまま透過する）。
	Data json.RawMessage `json:"data"`
}

// NewEnvelope は新しい転送ペイロードを生成する。
// dataがnilの場合は空オブジェクトを設定する。
func NewEnvelope(sessionIDs []string, instanceID, message string, data json.RawMessage) (*Envelope, error) {
	if len(sessionIDs) == 0 {
		return nil, errors.New("転送先セッションが1つもありません")
	}
	if instanceID == "" {
		return nil, errors.New("転送先インスタンスIDが空です")
	}
	if message == "" {
		return nil, errors.New("メッセージが空です")
	}
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	return &Envelope{
		SessionIDs: sessionIDs,
		InstanceID: instanceID,
		Message:    message,
		Data:       data,
	}, nil
}
