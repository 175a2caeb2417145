package repartitor

import (
	"testing"

	"github.com/virtuatable/repartitor/internal/store"
)

// TestGroupByInstance はセッションのインスタンス別グループ化のテスト。
func TestGroupByInstance(t *testing.T) {
	t.Parallel()

	t.Run("インスタンスごとにセッションIDがまとめられる", func(t *testing.T) {
		t.Parallel()

		sessions := []store.Session{
			{ID: "session-1", WebsocketID: "ws-1"},
			{ID: "session-2", WebsocketID: "ws-2"},
			{ID: "session-3", WebsocketID: "ws-1"},
		}

		groups := GroupByInstance(sessions)

		if len(groups) != 2 {
			t.Fatalf("グループ数: got %d, want 2", len(groups))
		}
		if got := groups["ws-1"]; len(got) != 2 || got[0] != "session-1" || got[1] != "session-3" {
			t.Errorf("ws-1のセッションID: got %v, want [session-1 session-3]", got)
		}
		if got := groups["ws-2"]; len(got) != 1 || got[0] != "session-2" {
			t.Errorf("ws-2のセッションID: got %v, want [session-2]", got)
		}
	})

	t.Run("接続していないセッションは除外される", func(t *testing.T) {
		t.Parallel()

		sessions := []store.Session{
			{ID: "session-1", WebsocketID: "ws-1"},
			{ID: "session-2", WebsocketID: ""},
		}

		groups := GroupByInstance(sessions)

		if len(groups) != 1 {
			t.Fatalf("グループ数: got %d, want 1", len(groups))
		}
		if got := groups["ws-1"]; len(got) != 1 || got[0] != "session-1" {
			t.Errorf("ws-1のセッションID: got %v, want [session-1]", got)
		}
	})

	t.Run("空の入力からは空のグループが返される", func(t *testing.T) {
		t.Parallel()

		if groups := GroupByInstance(nil); len(groups) != 0 {
			t.Errorf("グループ数: got %d, want 0", len(groups))
		}
	})

	t.Run("全セッションが未接続の場合は空のグループが返される", func(t *testing.T) {
		t.Parallel()

		sessions := []store.Session{
			{ID: "session-1", WebsocketID: ""},
			{ID: "session-2", WebsocketID: ""},
		}

		if groups := GroupByInstance(sessions); len(groups) != 0 {
			t.Errorf("グループ数: got %d, want 0", len(groups))
		}
	})
}
