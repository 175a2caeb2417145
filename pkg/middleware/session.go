package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims はセッショントークンのクレーム（ペイロード）を表す。
// 上流の認証サービスが発行し、セッションIDをサービス間で伝播するために使用する。
type SessionClaims struct {
	jwt.RegisteredClaims
	// SessionID は認証済みセッションの一意識別子。
	SessionID string `json:"session_id"`
}

// headerKeySessionID はサービス間でセッションIDを伝播するためのHTTPヘッダーキー。
const headerKeySessionID = "X-Session-ID"

// GenerateSessionToken はセッションIDからセッショントークンを生成する。
// 本来は上流の認証サービスが発行する。開発用シードとテストで使用する。
func GenerateSessionToken(secret, sessionID string) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "virtuatable-gateway",
		},
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("セッショントークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// SessionAuth はセッショントークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストに "session_id" を設定する。
// セッション自体の実在確認はストアを参照できるハンドラ側の責務とする。
func SessionAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorizationヘッダーが必要です",
			})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer トークン形式が不正です",
			})
			return
		}

		claims := &SessionClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンが無効です",
			})
			return
		}

		c.Set("session_id", claims.SessionID)
		c.Header(headerKeySessionID, claims.SessionID)
		c.Next()
	}
}

// GetSessionID はGinコンテキストからセッションIDを取得する。
// SessionAuthミドルウェアが事前に適用されている必要がある。
func GetSessionID(c *gin.Context) string {
	sessionID, _ := c.Get("session_id")
	if id, ok := sessionID.(string); ok {
		return id
	}
	return ""
}
