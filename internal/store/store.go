package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/virtuatable/repartitor/pkg/migration"
)

//go:embed migrations/*.up.sql
var migrationsFS embed.FS

// Open はプラットフォームDBへの接続を開き、スキーマを適用する。
// dsnにはSQLiteの接続文字列（例: "/data/platform.db?_journal_mode=WAL&_busy_timeout=5000"）を指定する。
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if _, err := migration.Run(db, migrationsFS, "migrations"); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	return db, nil
}

// Account はプラットフォームのアカウントを表す。
type Account struct {
	// ID はアカウントの一意識別子。
	ID string
	// Username はアカウントのユーザー名（一意）。
	Username string
}

// Session は認証済みの接続1つ分のセッションを表す。
// 1つのアカウントは複数の端末からの接続に対応する複数のセッションを持ちうる。
type Session struct {
	// ID はセッションの一意識別子。
	ID string
	// AccountID はセッションを保持するアカウントのID。
	AccountID string
	// Token はセッションの資格情報トークン。
	Token string
	// WebsocketID はこのセッションの接続を保持しているwebsocketsインスタンスのID。
	// 空文字列は配送先が存在しないことを表す。
	WebsocketID string
}

// Campaign はキャンペーン（卓）を表す。
type Campaign struct {
	// ID はキャンペーンの一意識別子。
	ID string
	// Title はキャンペーンのタイトル。
	Title string
}

// 招待の状態。creatorとacceptedのみが通知対象のメンバーシップを表す。
const (
	// InvitationStatusCreator はキャンペーンの作成者を表す。
	InvitationStatusCreator = "creator"
	// InvitationStatusAccepted は招待を受諾したメンバーを表す。
	InvitationStatusAccepted = "accepted"
	// InvitationStatusPending は未回答の招待を表す。
	InvitationStatusPending = "pending"
	// InvitationStatusDeclined は辞退された招待を表す。
	InvitationStatusDeclined = "declined"
)

// Queries はプラットフォームDBへのクエリ実行オブジェクト。
type Queries struct {
	db *sql.DB
}

// New は新しいクエリ実行オブジェクトを生成する。
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// GetAccountByID はIDでアカウントを取得する。
// 存在しない場合はsql.ErrNoRowsを返す。
func (q *Queries) GetAccountByID(ctx context.Context, id string) (Account, error) {
	var a Account
	err := q.db.QueryRowContext(ctx,
		"SELECT id, username FROM accounts WHERE id = ?", id,
	).Scan(&a.ID, &a.Username)
	return a, err
}

// GetAccountByUsername はユーザー名の完全一致でアカウントを取得する。
// 存在しない場合はsql.ErrNoRowsを返す。
func (q *Queries) GetAccountByUsername(ctx context.Context, username string) (Account, error) {
	var a Account
	err := q.db.QueryRowContext(ctx,
		"SELECT id, username FROM accounts WHERE username = ?", username,
	).Scan(&a.ID, &a.Username)
	return a, err
}

// GetSessionByID はIDでセッションを取得する。
// 存在しない場合はsql.ErrNoRowsを返す。
func (q *Queries) GetSessionByID(ctx context.Context, id string) (Session, error) {
	var s Session
	err := q.db.QueryRowContext(ctx,
		"SELECT id, account_id, token, websocket_id FROM sessions WHERE id = ?", id,
	).Scan(&s.ID, &s.AccountID, &s.Token, &s.WebsocketID)
	return s, err
}

// GetCampaignByID はIDでキャンペーンを取得する。
// 存在しない場合はsql.ErrNoRowsを返す。
func (q *Queries) GetCampaignByID(ctx context.Context, id string) (Campaign, error) {
	var c Campaign
	err := q.db.QueryRowContext(ctx,
		"SELECT id, title FROM campaigns WHERE id = ?", id,
	).Scan(&c.ID, &c.Title)
	return c, err
}

// ListSessionsByAccountID はアカウントが保持する全セッションを登録順に返す。
func (q *Queries) ListSessionsByAccountID(ctx context.Context, accountID string) ([]Session, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, account_id, token, websocket_id FROM sessions WHERE account_id = ? ORDER BY rowid",
		accountID,
	)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

// ListSessionsByAccountIDs は複数アカウントのセッションを登録順に返す。
// セッションIDで重複排除された結果を返す（同一アカウントが複数回
// 指定されても各セッションは一度しか現れない）。
func (q *Queries) ListSessionsByAccountIDs(ctx context.Context, accountIDs []string) ([]Session, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(accountIDs))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(
		"SELECT id, account_id, token, websocket_id FROM sessions WHERE account_id IN (%s) ORDER BY rowid",
		placeholders,
	)

	args := make([]any, 0, len(accountIDs))
	for _, id := range accountIDs {
		args = append(args, id)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

// ListActiveMemberIDs はキャンペーンの有効なメンバー（作成者および
// 招待を受諾したアカウント）のIDを返す。
func (q *Queries) ListActiveMemberIDs(ctx context.Context, campaignID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT account_id FROM invitations WHERE campaign_id = ? AND status IN (?, ?) ORDER BY rowid",
		campaignID, InvitationStatusCreator, InvitationStatusAccepted,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// scanSessions は行セットをセッションのスライスに変換する共通処理。
func scanSessions(rows *sql.Rows) ([]Session, error) {
	defer func() { _ = rows.Close() }()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.AccountID, &s.Token, &s.WebsocketID); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CreateAccountParams はアカウント作成のパラメータ。
type CreateAccountParams struct {
	// ID はアカウントの一意識別子。
	ID string
	// Username はアカウントのユーザー名。
	Username string
}

// CreateAccount はアカウントを作成する。開発用シードとテストで使用する。
func (q *Queries) CreateAccount(ctx context.Context, params CreateAccountParams) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO accounts (id, username) VALUES (?, ?)",
		params.ID, params.Username,
	)
	return err
}

// CreateSessionParams はセッション作成のパラメータ。
type CreateSessionParams struct {
	// ID はセッションの一意識別子。
	ID string
	// AccountID はセッションを保持するアカウントのID。
	AccountID string
	// Token はセッションの資格情報トークン。
	Token string
	// WebsocketID は接続を保持しているwebsocketsインスタンスのID（未接続なら空）。
	WebsocketID string
}

// CreateSession はセッションを作成する。開発用シードとテストで使用する。
func (q *Queries) CreateSession(ctx context.Context, params CreateSessionParams) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO sessions (id, account_id, token, websocket_id) VALUES (?, ?, ?, ?)",
		params.ID, params.AccountID, params.Token, params.WebsocketID,
	)
	return err
}

// CreateCampaignParams はキャンペーン作成のパラメータ。
type CreateCampaignParams struct {
	// ID はキャンペーンの一意識別子。
	ID string
	// Title はキャンペーンのタイトル。
	Title string
}

// CreateCampaign はキャンペーンを作成する。開発用シードとテストで使用する。
func (q *Queries) CreateCampaign(ctx context.Context, params CreateCampaignParams) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO campaigns (id, title) VALUES (?, ?)",
		params.ID, params.Title,
	)
	return err
}

// CreateInvitationParams は招待作成のパラメータ。
type CreateInvitationParams struct {
	// ID は招待の一意識別子。
	ID string
	// CampaignID は対象キャンペーンのID。
	CampaignID string
	// AccountID は招待されたアカウントのID。
	AccountID string
	// Status は招待の状態。
	Status string
}

// CreateInvitation は招待を作成する。開発用シードとテストで使用する。
func (q *Queries) CreateInvitation(ctx context.Context, params CreateInvitationParams) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO invitations (id, campaign_id, account_id, status) VALUES (?, ?, ?, ?)",
		params.ID, params.CampaignID, params.AccountID, params.Status,
	)
	return err
}
