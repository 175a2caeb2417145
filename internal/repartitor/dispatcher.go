package repartitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/virtuatable/repartitor/internal/registry"
	"github.com/virtuatable/repartitor/internal/store"
	"github.com/virtuatable/repartitor/pkg/httpclient"
	"github.com/virtuatable/repartitor/pkg/wire"
)

// messagesPath はゲートウェイ側でwebsocketsインスタンスへの
// 転送を受け付けるエンドポイントのパス。
const messagesPath = "/websockets/messages"

// ConnectionRegistry は稼働中のサービス構成（websocketsインスタンスと
// ゲートウェイ）へのアクセスを表す。registry.Queriesが実装する。
type ConnectionRegistry interface {
	// WebsocketServiceExists はwebsocketsサービスが登録されているか返す
	WebsocketServiceExists(ctx context.Context) (bool, error)
	// RandomActiveInstance は配信可能なwebsocketsインスタンスをランダムに返す
	RandomActiveInstance(ctx context.Context) (registry.Instance, error)
	// RandomGateway は稼働中のゲートウェイをランダムに返す
	RandomGateway(ctx context.Context) (registry.Gateway, error)
}

// Dispatcher はグループ化済みのメッセージをゲートウェイ経由で
// websocketsインスタンスへ送信する。
type Dispatcher struct {
	registry ConnectionRegistry
}

// NewDispatcher はDispatcherを生成する。
func NewDispatcher(reg ConnectionRegistry) *Dispatcher {
	return &Dispatcher{registry: reg}
}

// Ready は配送が可能な状態かを返す。websocketsサービスが未登録の
// 環境では全ての配送がスキップされる。
func (d *Dispatcher) Ready(ctx context.Context) bool {
	exists, err := d.registry.WebsocketServiceExists(ctx)
	if err != nil {
		log.Printf("websocketsサービスの確認に失敗しました: %v", err)
		return false
	}
	return exists
}

// Send は1グループ分のメッセージをゲートウェイ経由で送信する。
// ゲートウェイは送信のたびに稼働中のものからランダムに選ばれる。
func (d *Dispatcher) Send(ctx context.Context, requester store.Session, instanceID string, sessionIDs []string, message string, data json.RawMessage) error {
	gateway, err := d.registry.RandomGateway(ctx)
	if err != nil {
		return fmt.Errorf("ゲートウェイの選択に失敗しました: %w", err)
	}

	envelope, err := wire.NewEnvelope(sessionIDs, instanceID, message, data)
	if err != nil {
		return fmt.Errorf("転送メッセージの構築に失敗しました: %w", err)
	}

	// 要求元セッションの資格情報と、経由するゲートウェイ自身のトークンを引き渡す
	ctx = httpclient.WithSessionID(ctx, requester.ID)
	ctx = httpclient.WithSessionToken(ctx, requester.Token)
	ctx = httpclient.WithGatewayToken(ctx, gateway.Token)

	client := httpclient.New(gateway.URL)
	if err := client.PostJSON(ctx, messagesPath, envelope, nil); err != nil {
		return fmt.Errorf("ゲートウェイへの送信に失敗しました: %w", err)
	}
	return nil
}
