// 開発環境用のシードデータ投入ツール。
// プラットフォームデータベースにアカウント・セッション・キャンペーン・
// サービス構成の初期データを作成し、動作確認用のセッショントークンを
// 標準出力に表示する。
package main

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/virtuatable/repartitor/internal/registry"
	"github.com/virtuatable/repartitor/internal/repartitor"
	"github.com/virtuatable/repartitor/internal/store"
	"github.com/virtuatable/repartitor/pkg/middleware"
)

func main() {
	cfg, err := repartitor.LoadConfig()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	db, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("データベース接続に失敗: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	queries := store.New(db)
	registryQueries := registry.New(db)

	// 依頼者となるゲームマスターのアカウントとセッション
	gmID := uuid.New().String()
	gmSessionID := uuid.New().String()
	gmToken, err := middleware.GenerateSessionToken(cfg.JWTSecret, gmSessionID)
	if err != nil {
		log.Fatalf("セッショントークンの生成に失敗: %v", err)
	}
	if err := queries.CreateAccount(ctx, store.CreateAccountParams{ID: gmID, Username: "game-master"}); err != nil {
		log.Fatalf("アカウントの作成に失敗: %v", err)
	}
	if err := queries.CreateSession(ctx, store.CreateSessionParams{
		ID:          gmSessionID,
		AccountID:   gmID,
		Token:       gmToken,
		WebsocketID: "",
	}); err != nil {
		log.Fatalf("セッションの作成に失敗: %v", err)
	}

	// 宛先となるプレイヤーのアカウントとセッション（websocketsに接続済み）
	playerID := uuid.New().String()
	instanceID := uuid.New().String()
	if err := queries.CreateAccount(ctx, store.CreateAccountParams{ID: playerID, Username: "player-1"}); err != nil {
		log.Fatalf("アカウントの作成に失敗: %v", err)
	}
	if err := queries.CreateSession(ctx, store.CreateSessionParams{
		ID:          uuid.New().String(),
		AccountID:   playerID,
		Token:       uuid.New().String(),
		WebsocketID: instanceID,
	}); err != nil {
		log.Fatalf("セッションの作成に失敗: %v", err)
	}

	// 両アカウントが参加するキャンペーン
	campaignID := uuid.New().String()
	if err := queries.CreateCampaign(ctx, store.CreateCampaignParams{ID: campaignID, Title: "深淵の城"}); err != nil {
		log.Fatalf("キャンペーンの作成に失敗: %v", err)
	}
	if err := queries.CreateInvitation(ctx, store.CreateInvitationParams{
		ID:         uuid.New().String(),
		CampaignID: campaignID,
		AccountID:  gmID,
		Status:     store.InvitationStatusCreator,
	}); err != nil {
		log.Fatalf("招待の作成に失敗: %v", err)
	}
	if err := queries.CreateInvitation(ctx, store.CreateInvitationParams{
		ID:         uuid.New().String(),
		CampaignID: campaignID,
		AccountID:  playerID,
		Status:     store.InvitationStatusAccepted,
	}); err != nil {
		log.Fatalf("招待の作成に失敗: %v", err)
	}

	// websocketsサービスとそのインスタンス、転送先のゲートウェイ
	serviceID := uuid.New().String()
	if err := registryQueries.CreateService(ctx, registry.CreateServiceParams{
		ID:  serviceID,
		Key: registry.ServiceKeyWebsockets,
	}); err != nil {
		log.Fatalf("サービスの登録に失敗: %v", err)
	}
	if err := registryQueries.CreateInstance(ctx, registry.CreateInstanceParams{
		ID:        instanceID,
		ServiceID: serviceID,
		URL:       "http://localhost:9293",
		Active:    true,
		Running:   true,
	}); err != nil {
		log.Fatalf("インスタンスの登録に失敗: %v", err)
	}
	if err := registryQueries.CreateGateway(ctx, registry.CreateGatewayParams{
		ID:      uuid.New().String(),
		URL:     "http://localhost:8443",
		Running: true,
		Token:   uuid.New().String(),
	}); err != nil {
		log.Fatalf("ゲートウェイの登録に失敗: %v", err)
	}

	log.Printf("シードデータを投入しました")
	log.Printf("キャンペーンID: %s", campaignID)
	log.Printf("プレイヤーのアカウントID: %s", playerID)
	log.Printf("依頼者のセッショントークン: %s", gmToken)
}
