package repartitor

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config はサービスの起動設定。環境変数から読み込む。
type Config struct {
	// Port はHTTPサーバーが待ち受けるポート番号
	Port string `env:"PORT" envDefault:"8087"`
	// DatabaseDSN はプラットフォームデータベースへの接続文字列
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"/data/platform.db?_journal_mode=WAL&_busy_timeout=5000"`
	// JWTSecret はセッショントークンの署名検証に使う秘密鍵
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-key"`
	// FrontendURL はCORSで許可するフロントエンドのオリジン
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	// DispatchTimeout は1回の転送リクエスト全体に適用するタイムアウト
	DispatchTimeout time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"10s"`
}

// LoadConfig は環境変数からConfigを構築する。
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
