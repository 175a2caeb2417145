package repartitor

import "fmt"

// リクエストで宛先を指定するフィールド名。
// エラー応答のfieldにもそのまま使われる。
const (
	FieldAccountID  = "account_id"
	FieldAccountIDs = "account_ids"
	FieldCampaignID = "campaign_id"
	FieldUsername   = "username"
	FieldSessionID  = "session_id"
	FieldMessage    = "message"
	FieldAnyID      = "any_id"
	FieldInstanceID = "instance_id"
)

// ItemNotFound は宛先の解決中に参照されたリソースが
// 存在しなかったことを表すエラー。
// Fieldは問題のあったリクエストフィールド名を保持する。
type ItemNotFound struct {
	// Field は存在しなかったリソースを指定したフィールド名
	Field string
}

// Error はエラーメッセージを返す。
func (e ItemNotFound) Error() string {
	return fmt.Sprintf("%s: 指定されたリソースが見つかりません", e.Field)
}
