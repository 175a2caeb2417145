// 振り分けサービスのエントリポイント。
// 通知メッセージの宛先をセッションに解決し、接続を保持している
// websocketsインスタンスごとにゲートウェイ経由で転送する。
package main

import (
	"log"

	"github.com/virtuatable/repartitor/internal/repartitor"
)

func main() {
	cfg, err := repartitor.LoadConfig()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := repartitor.NewServer(cfg)
	if err != nil {
		log.Fatalf("振り分けサーバーの初期化に失敗: %v", err)
	}

	log.Printf("振り分けサービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("振り分けサービスの起動に失敗: %v", err)
	}
}
