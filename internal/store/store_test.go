package store

import (
	"database/sql"
	"errors"
	"testing"
)

// setupTestQueries はテスト用のインメモリDBとクエリ実行オブジェクトを構築する。
func setupTestQueries(t *testing.T) *Queries {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("インメモリDBの作成に失敗: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(db)
}

// TestGetAccountByID はIDによるアカウント取得を検証する。
func TestGetAccountByID(t *testing.T) {
	t.Parallel()

	t.Run("存在するアカウントを取得できること", func(t *testing.T) {
		t.Parallel()
		q := setupTestQueries(t)

		if err := q.CreateAccount(t.Context(), CreateAccountParams{ID: "acc-1", Username: "vincent"}); err != nil {
			t.Fatalf("テスト用アカウントの作成に失敗: %v", err)
		}

		account, err := q.GetAccountByID(t.Context(), "acc-1")
		if err != nil {
			t.Fatalf("GetAccountByID()でエラーが発生: %v", err)
		}
		if account.ID != "acc-1" {
			t.Errorf("ID = %q, want %q", account.ID, "acc-1")
		}
		if account.Username != "vincent" {
			t.Errorf("Username = %q, want %q", account.Username, "vincent")
		}
	})

	t.Run("存在しないアカウントでsql.ErrNoRowsが返ること", func(t *testing.T) {
		t.Parallel()
		q := setupTestQueries(t)

		_, err := q.GetAccountByID(t.Context(), "missing")
		if !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("err = %v, want sql.ErrNoRows", err)
		}
	})
}

// TestGetAccountByUsername はユーザー名によるアカウント取得を検証する。
func TestGetAccountByUsername(t *testing.T) {
	t.Parallel()

	t.Run("完全一致でアカウントを取得できること", func(t *testing.T) {
		t.Parallel()
		q := setupTestQueries(t)

		if err := q.CreateAccount(t.Context(), CreateAccountParams{ID: "acc-1", Username: "babausse"}); err != nil {
			t.Fatalf("テスト用アカウントの作成に失敗: %v", err)
		}

		account, err := q.GetAccountByUsername(t.Context(), "babausse")
		if err != nil {
			t.Fatalf("GetAccountByUsername()でエラーが発生: %v", err)
		}
		if account.ID != "acc-1" {
			t.Errorf("ID = %q, want %q", account.ID, "acc-1")
		}
	})

	t.Run("部分一致では取得できないこと", func(t *testing.T) {
		t.Parallel()
		q := setupTestQueries(t)

		if err := q.CreateAccount(t.Context(), CreateAccountParams{ID: "acc-1", Username: "babausse"}); err != nil {
			t.Fatalf("テスト用アカウントの作成に失敗: %v", err)
		}

		_, err := q.GetAccountByUsername(t.Context(), "babau")
		if !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("err = %v, want sql.ErrNoRows", err)
		}
	})
}

// TestListSessionsByAccountID はアカウント単位のセッション一覧を検証する。
func TestListSessionsByAccountID(t *testing.T) {
	t.Parallel()

	t.Run("アカウントの全セッションが登録順に返ること", func(t *testing.T) {
		t.Parallel()
		q := setupTestQueries(t)

		if err := q.CreateAccount(t.Context(), CreateAccountParams{ID: "acc-1", Username: "vincent"}); err != nil {
			t.Fatalf("テスト用アカウントの作成に失敗: %v", err)
		}
		for _, id := range []string{"sess-1", "sess-2", "sess-3"} {
			err := q.CreateSession(t.Context(), CreateSessionParams{ID: id, AccountID: "acc-1", WebsocketID: "ws-1"})
			if err != nil {
				t.Fatalf("テスト用セッションの作成に失敗: %v", err)
			}
		}

		sessions, err := q.ListSessionsByAccountID(t.Context(), "acc-1")
		if err != nil {
			t.Fatalf("ListSessionsByAccountID()でエラーが発生: %v", err)
		}
		if len(sessions) != 3 {
			t.Fatalf("セッション数 = %d, want 3", len(sessions))
		}
		for i, want := range []string{"sess-1", "sess-2", "sess-3"} {
			if sessions[i].ID != want {
				t.Errorf("sessions[%d].ID = %q, want %q", i, sessions[i].ID, want)
			}
		}
	})

	t.Run("セッションを持たないアカウントで空の結果が返ること", func(t *testing.T) {
		t.Parallel()
		q := setupTestQueries(t)

		if err := q.CreateAccount(t.Context(), CreateAccountParams{ID: "acc-1", Username: "vincent"}); err != nil {
			t.Fatalf("テスト用アカウントの作成に失敗: %v", err)
		}

		sessions, err := q.ListSessionsByAccountID(t.Context(), "acc-1")
		if err != nil {
			t.Fatalf("ListSessionsByAccountID()でエラーが発生: %v", err)
		}
		if len(sessions) != 0 {
			t.Errorf("セッション数 = %d, want 0", len(sessions))
		}
	})
}

// TestListSessionsByAccountIDs は複数アカウントのセッション一覧を検証する。
func TestListSessionsByAccountIDs(t *testing.T) {
	t.Parallel()

	t.Run("複数アカウントのセッションがまとめて返ること", func(t *testing.T) {
		t.Parallel()
		q := setupTestQueries(t)

		for _, acc := range []string{"acc-1", "acc-2"} {
			if err := q.CreateAccount(t.Context(), CreateAccountParams{ID: acc, Username: "user-" + acc}); err != nil {
				t.Fatalf("テスト用アカウントの作成に失敗: %v", err)
			}
		}
		if err := q.CreateSession(t.Context(), CreateSessionParams{ID: "sess-1", AccountID: "acc-1", WebsocketID: "ws-1"}); err != nil {
			t.Fatalf("テスト用セッションの作成に失敗: %v", err)
		}
		if err := q.CreateSession(t.Context(), CreateSessionParams{ID: "sess-2", AccountID: "acc-2", WebsocketID: "ws-2"}); err != nil {
			t.Fatalf("テスト用セッションの作成に失敗: %v", err)
		}

		sessions, err := q.ListSessionsByAccountIDs(t.Context(), []string{"acc-1", "acc-2"})
		if err != nil {
			t.Fatalf("ListSessionsByAccountIDs()でエラーが発生: %v", err)
		}
		if len(sessions) != 2 {
			t.Errorf("セッション数 = %d, want 2", len(sessions))
		}
	})

	t.Run("同一アカウントが重複指定されてもセッションは一度しか現れないこと", func(t *testing.T) {
		t.Parallel()
		q := setupTestQueries(t)

		if err := q.CreateAccount(t.Context(), CreateAccountParams{ID: "acc-1", Username: "vincent"}); err != nil {
			t.Fatalf("テスト用アカウントの作成に失敗: %v", err)
		}
		if err := q.CreateSession(t.Context(), CreateSessionParams{ID: "sess-1", AccountID: "acc-1", WebsocketID: "ws-1"}); err != nil {
			t.Fatalf("テスト用セッションの作成に失敗: %v", err)
		}

		sessions, err := q.ListSessionsByAccountIDs(t.Context(), []string{"acc-1", "acc-1"})
		if err != nil {
			t.Fatalf("ListSessionsByAccountIDs()でエラーが発生: %v", err)
		}
		if len(sessions) != 1 {
			t.Errorf("セッション数 = %d, want 1", len(sessions))
		}
	})

	t.Run("空のIDリストで空の結果が返ること", func(t *testing.T) {
		t.Parallel()
		q := setupTestQueries(t)

		sessions, err := q.ListSessionsByAccountIDs(t.Context(), nil)
		if err != nil {
			t.Fatalf("ListSessionsByAccountIDs()でエラーが発生: %v", err)
		}
		if len(sessions) != 0 {
			t.Errorf("セッション数 = %d, want 0", len(sessions))
		}
	})
}

// TestListActiveMemberIDs はキャンペーンの有効メンバー抽出を検証する。
func TestListActiveMemberIDs(t *testing.T) {
	t.Parallel()

	t.Run("creatorとacceptedのみが返ること", func(t *testing.T) {
		t.Parallel()
		q := setupTestQueries(t)

		if err := q.CreateCampaign(t.Context(), CreateCampaignParams{ID: "camp-1", Title: "La Tour Sombre"}); err != nil {
			t.Fatalf("テスト用キャンペーンの作成に失敗: %v", err)
		}

		invitations := []CreateInvitationParams{
			{ID: "inv-1", CampaignID: "camp-1", AccountID: "acc-creator", Status: InvitationStatusCreator},
			{ID: "inv-2", CampaignID: "camp-1", AccountID: "acc-accepted", Status: InvitationStatusAccepted},
			{ID: "inv-3", CampaignID: "camp-1", AccountID: "acc-pending", Status: InvitationStatusPending},
			{ID: "inv-4", CampaignID: "camp-1", AccountID: "acc-declined", Status: InvitationStatusDeclined},
		}
		for _, inv := range invitations {
			if err := q.CreateInvitation(t.Context(), inv); err != nil {
				t.Fatalf("テスト用招待の作成に失敗: %v", err)
			}
		}

		ids, err := q.ListActiveMemberIDs(t.Context(), "camp-1")
		if err != nil {
			t.Fatalf("ListActiveMemberIDs()でエラーが発生: %v", err)
		}
		if len(ids) != 2 {
			t.Fatalf("メンバー数 = %d, want 2", len(ids))
		}
		if ids[0] != "acc-creator" || ids[1] != "acc-accepted" {
			t.Errorf("ids = %v, want [acc-creator acc-accepted]", ids)
		}
	})

	t.Run("別キャンペーンの招待は含まれないこと", func(t *testing.T) {
		t.Parallel()
		q := setupTestQueries(t)

		for _, inv := range []CreateInvitationParams{
			{ID: "inv-1", CampaignID: "camp-1", AccountID: "acc-1", Status: InvitationStatusAccepted},
			{ID: "inv-2", CampaignID: "camp-2", AccountID: "acc-2", Status: InvitationStatusAccepted},
		} {
			if err := q.CreateInvitation(t.Context(), inv); err != nil {
				t.Fatalf("テスト用招待の作成に失敗: %v", err)
			}
		}

		ids, err := q.ListActiveMemberIDs(t.Context(), "camp-1")
		if err != nil {
			t.Fatalf("ListActiveMemberIDs()でエラーが発生: %v", err)
		}
		if len(ids) != 1 || ids[0] != "acc-1" {
			t.Errorf("ids = %v, want [acc-1]", ids)
		}
	})
}

// TestGetSessionByID はIDによるセッション取得を検証する。
func TestGetSessionByID(t *testing.T) {
	t.Parallel()

	t.Run("存在するセッションを取得できること", func(t *testing.T) {
		t.Parallel()
		q := setupTestQueries(t)

		err := q.CreateSession(t.Context(), CreateSessionParams{
			ID: "sess-1", AccountID: "acc-1", Token: "secret", WebsocketID: "ws-1",
		})
		if err != nil {
			t.Fatalf("テスト用セッションの作成に失敗: %v", err)
		}

		session, err := q.GetSessionByID(t.Context(), "sess-1")
		if err != nil {
			t.Fatalf("GetSessionByID()でエラーが発生: %v", err)
		}
		if session.AccountID != "acc-1" {
			t.Errorf("AccountID = %q, want %q", session.AccountID, "acc-1")
		}
		if session.Token != "secret" {
			t.Errorf("Token = %q, want %q", session.Token, "secret")
		}
		if session.WebsocketID != "ws-1" {
			t.Errorf("WebsocketID = %q, want %q", session.WebsocketID, "ws-1")
		}
	})

	t.Run("存在しないセッションでsql.ErrNoRowsが返ること", func(t *testing.T) {
		t.Parallel()
		q := setupTestQueries(t)

		_, err := q.GetSessionByID(t.Context(), "missing")
		if !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("err = %v, want sql.ErrNoRows", err)
		}
	})
}
