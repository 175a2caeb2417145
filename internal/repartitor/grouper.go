package repartitor

import "github.com/virtuatable/repartitor/internal/store"

// GroupByInstance はセッションの集合を、各セッションの接続を保持している
// websocketsインスタンスのIDごとにまとめる。どのインスタンスにも接続して
// いないセッション（WebsocketIDが空）は配送不能として除外される。
// 各グループ内のセッションIDは入力の順序を保つ。
func GroupByInstance(sessions []store.Session) map[string][]string {
	groups := make(map[string][]string)
	for _, session := range sessions {
		if session.WebsocketID == "" {
			continue
		}
		groups[session.WebsocketID] = append(groups[session.WebsocketID], session.ID)
	}
	return groups
}
