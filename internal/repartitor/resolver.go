package repartitor

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/virtuatable/repartitor/internal/store"
)

// RecipientStore は宛先解決に必要なプラットフォームデータへのアクセスを表す。
// store.Queriesが実装する。
type RecipientStore interface {
	// GetAccountByID はIDでアカウントを取得する
	GetAccountByID(ctx context.Context, id string) (store.Account, error)
	// GetAccountByUsername はユーザー名でアカウントを取得する
	GetAccountByUsername(ctx context.Context, username string) (store.Account, error)
	// GetSessionByID はIDでセッションを取得する
	GetSessionByID(ctx context.Context, id string) (store.Session, error)
	// GetCampaignByID はIDでキャンペーンを取得する
	GetCampaignByID(ctx context.Context, id string) (store.Campaign, error)
	// ListSessionsByAccountID はアカウントの全セッションを取得する
	ListSessionsByAccountID(ctx context.Context, accountID string) ([]store.Session, error)
	// ListSessionsByAccountIDs は複数アカウントの全セッションを取得する
	ListSessionsByAccountIDs(ctx context.Context, accountIDs []string) ([]store.Session, error)
	// ListActiveMemberIDs はキャンペーンの有効メンバーのアカウントIDを取得する
	ListActiveMemberIDs(ctx context.Context, campaignID string) ([]string, error)
}

// ForwardRequest は1件の転送依頼。宛先セレクタのうち
// ひとつ以上が設定されていることを呼び出し側が保証する。
type ForwardRequest struct {
	// AccountID は単一アカウント宛の指定
	AccountID string
	// AccountIDs は複数アカウント宛の指定
	AccountIDs []string
	// CampaignID はキャンペーンのメンバー宛の指定
	CampaignID string
	// Username はユーザー名による単一アカウント宛の指定
	Username string
	// Message はメッセージ種別
	Message string
	// Data はメッセージに添付する任意のJSONペイロード
	Data json.RawMessage
}

// Resolver は転送依頼の宛先指定をセッションの集合に解決する。
type Resolver struct {
	store RecipientStore
}

// NewResolver はResolverを生成する。
func NewResolver(recipients RecipientStore) *Resolver {
	return &Resolver{store: recipients}
}

// selector は宛先フィールドひとつ分の解決手順。
// Resolveはこのテーブルを宣言順に走査し、最初に値が
// 設定されているセレクタだけを実行する。
type selector struct {
	field   string
	present func(req ForwardRequest) bool
	resolve func(ctx context.Context, requester store.Session, req ForwardRequest) ([]store.Session, error)
}

// Resolve は優先順位 account_id > account_ids > campaign_id > username で
// 宛先を解決する。参照されたリソースが存在しない場合はItemNotFoundを返す。
// どのセレクタも設定されていない場合は空の集合を返す。
func (r *Resolver) Resolve(ctx context.Context, requester store.Session, req ForwardRequest) ([]store.Session, error) {
	selectors := []selector{
		{
			field:   FieldAccountID,
			present: func(req ForwardRequest) bool { return req.AccountID != "" },
			resolve: r.resolveAccountID,
		},
		{
			field:   FieldAccountIDs,
			present: func(req ForwardRequest) bool { return len(req.AccountIDs) > 0 },
			resolve: r.resolveAccountIDs,
		},
		{
			field:   FieldCampaignID,
			present: func(req ForwardRequest) bool { return req.CampaignID != "" },
			resolve: r.resolveCampaignID,
		},
		{
			field:   FieldUsername,
			present: func(req ForwardRequest) bool { return req.Username != "" },
			resolve: r.resolveUsername,
		},
	}

	for _, sel := range selectors {
		if sel.present(req) {
			return sel.resolve(ctx, requester, req)
		}
	}
	return nil, nil
}

// resolveAccountID は単一アカウントの全セッションを返す。
func (r *Resolver) resolveAccountID(ctx context.Context, _ store.Session, req ForwardRequest) ([]store.Session, error) {
	if _, err := r.store.GetAccountByID(ctx, req.AccountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ItemNotFound{Field: FieldAccountID}
		}
		return nil, fmt.Errorf("アカウントの取得に失敗しました: %w", err)
	}
	sessions, err := r.store.ListSessionsByAccountID(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("セッション一覧の取得に失敗しました: %w", err)
	}
	return sessions, nil
}

// resolveAccountIDs は指定された全アカウントの存在を確認したうえで
// 各アカウントの全セッションを返す。ひとつでも存在しないアカウントが
// あれば解決全体が失敗する。
func (r *Resolver) resolveAccountIDs(ctx context.Context, _ store.Session, req ForwardRequest) ([]store.Session, error) {
	for _, id := range req.AccountIDs {
		if _, err := r.store.GetAccountByID(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ItemNotFound{Field: FieldAccountID}
			}
			return nil, fmt.Errorf("アカウントの取得に失敗しました: %w", err)
		}
	}
	sessions, err := r.store.ListSessionsByAccountIDs(ctx, req.AccountIDs)
	if err != nil {
		return nil, fmt.Errorf("セッション一覧の取得に失敗しました: %w", err)
	}
	return sessions, nil
}

// resolveCampaignID はキャンペーンの有効メンバー（作成者と招待を承諾した
// アカウント）の全セッションを返す。依頼者自身のセッションは、同じ
// キャンペーンのメンバーであっても宛先から除外される。
func (r *Resolver) resolveCampaignID(ctx context.Context, requester store.Session, req ForwardRequest) ([]store.Session, error) {
	if _, err := r.store.GetCampaignByID(ctx, req.CampaignID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ItemNotFound{Field: FieldCampaignID}
		}
		return nil, fmt.Errorf("キャンペーンの取得に失敗しました: %w", err)
	}
	memberIDs, err := r.store.ListActiveMemberIDs(ctx, req.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("メンバー一覧の取得に失敗しました: %w", err)
	}
	sessions, err := r.store.ListSessionsByAccountIDs(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("セッション一覧の取得に失敗しました: %w", err)
	}

	recipients := make([]store.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.ID == requester.ID {
			continue
		}
		recipients = append(recipients, session)
	}
	return recipients, nil
}

// resolveUsername はユーザー名で特定したアカウントの全セッションを返す。
func (r *Resolver) resolveUsername(ctx context.Context, _ store.Session, req ForwardRequest) ([]store.Session, error) {
	account, err := r.store.GetAccountByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ItemNotFound{Field: FieldUsername}
		}
		return nil, fmt.Errorf("アカウントの取得に失敗しました: %w", err)
	}
	sessions, err := r.store.ListSessionsByAccountID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("セッション一覧の取得に失敗しました: %w", err)
	}
	return sessions, nil
}
