package repartitor

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/virtuatable/repartitor/internal/registry"
	"github.com/virtuatable/repartitor/internal/store"
	"github.com/virtuatable/repartitor/pkg/middleware"
)

// Server は振り分けサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はサービスの起動設定。
	cfg Config
	// store はプラットフォームデータへのアクセス。
	store RecipientStore
	// registry は稼働中のサービス構成へのアクセス。
	registry ConnectionRegistry
	// service は転送依頼の処理を統括するサービス。
	service *Service
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// NewServer は新しい振り分けサーバーを生成する。
// SQLiteデータベースの初期化とマイグレーションを行う。
func NewServer(cfg Config) (*Server, error) {
	sqlDB, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	queries := store.New(sqlDB)
	registryQueries := registry.New(sqlDB)
	dispatcher := NewDispatcher(registryQueries)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{cfg.FrontendURL}))

	s := &Server{
		router:   router,
		cfg:      cfg,
		store:    queries,
		registry: registryQueries,
		service:  NewService(NewResolver(queries), dispatcher, cfg.DispatchTimeout),
		db:       sqlDB,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.cfg.Port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	authenticated := s.router.Group("/")
	authenticated.Use(middleware.SessionAuth(s.cfg.JWTSecret))
	{
		// websocket接続用URLの取得
		authenticated.GET("/url", s.handleGetURL())
		// メッセージの振り分け転送
		authenticated.POST("/messages", s.handleForwardMessage())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "repartitor"})
	})
}

// answer は {status, field, error} 形式の構造化エラーを返す。
// プラットフォームの全サービスが同じ形式でエラーを報告する。
func answer(c *gin.Context, status int, field, code string) {
	c.JSON(status, gin.H{"status": status, "field": field, "error": code})
}

// websocketURL はインスタンスのHTTP URLをwebsocket接続用URLに変換する。
// スキームをhttp→ws（https→wss）に書き換え、末尾のスラッシュを除去して
// 接続パス/websocketsを付加する。
func websocketURL(instanceURL string) string {
	url := instanceURL
	if strings.HasPrefix(url, "http") {
		url = "ws" + url[len("http"):]
	}
	return strings.TrimSuffix(url, "/") + "/websockets"
}

// handleGetURL は接続可能なwebsocketsインスタンスをランダムに選び、
// そのwebsocket接続用URLを返すハンドラ。
func (s *Server) handleGetURL() gin.HandlerFunc {
	return func(c *gin.Context) {
		instance, err := s.registry.RandomActiveInstance(c.Request.Context())
		if err != nil {
			if errors.Is(err, registry.ErrNoEligibleInstance) {
				answer(c, http.StatusServiceUnavailable, FieldInstanceID, "unknown")
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "インスタンスの選択に失敗しました"})
			log.Printf("インスタンス選択エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"url": websocketURL(instance.URL)})
	}
}

// forwardMessageRequest はメッセージ転送リクエストのJSON構造。
// 宛先セレクタ（account_id/account_ids/campaign_id/username）は
// 少なくともひとつ設定されている必要がある。
type forwardMessageRequest struct {
	// Message はメッセージ種別。
	Message string `json:"message"`
	// Data はメッセージに添付する任意のJSONペイロード。
	Data json.RawMessage `json:"data"`
	// AccountID は単一アカウント宛の指定。
	AccountID string `json:"account_id"`
	// AccountIDs は複数アカウント宛の指定。
	AccountIDs []string `json:"account_ids"`
	// CampaignID はキャンペーンのメンバー宛の指定。
	CampaignID string `json:"campaign_id"`
	// Username はユーザー名による単一アカウント宛の指定。
	Username string `json:"username"`
}

// hasRecipient はいずれかの宛先セレクタが設定されているか返す。
func (r forwardMessageRequest) hasRecipient() bool {
	return r.AccountID != "" || len(r.AccountIDs) > 0 || r.CampaignID != "" || r.Username != ""
}

// handleForwardMessage はメッセージを宛先のセッションへ振り分けるハンドラ。
func (s *Server) handleForwardMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req forwardMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		if req.Message == "" {
			answer(c, http.StatusBadRequest, FieldMessage, "required")
			return
		}
		if !req.hasRecipient() {
			answer(c, http.StatusBadRequest, FieldAnyID, "required")
			return
		}

		sessionID := middleware.GetSessionID(c)
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "セッションIDが取得できません"})
			return
		}

		// トークンの署名が正しくてもセッションが失効している場合がある
		requester, err := s.store.GetSessionByID(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				answer(c, http.StatusNotFound, FieldSessionID, "unknown")
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "セッションの取得に失敗しました"})
			log.Printf("セッション取得エラー: %v", err)
			return
		}

		err = s.service.ForwardMessage(c.Request.Context(), requester, ForwardRequest{
			AccountID:  req.AccountID,
			AccountIDs: req.AccountIDs,
			CampaignID: req.CampaignID,
			Username:   req.Username,
			Message:    req.Message,
			Data:       req.Data,
		})
		if err != nil {
			var notFound ItemNotFound
			if errors.As(err, &notFound) {
				answer(c, http.StatusNotFound, notFound.Field, "unknown")
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "メッセージの転送に失敗しました"})
			log.Printf("メッセージ転送エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "transmitted"})
	}
}
