package repartitor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/virtuatable/repartitor/internal/store"
)

// Service は転送依頼の処理全体（解決・グループ化・送信）を統括する。
type Service struct {
	resolver   *Resolver
	dispatcher *Dispatcher
	// timeout は1件の転送依頼の送信フェーズ全体に適用するタイムアウト
	timeout time.Duration
}

// NewService はServiceを生成する。
func NewService(resolver *Resolver, dispatcher *Dispatcher, timeout time.Duration) *Service {
	return &Service{
		resolver:   resolver,
		dispatcher: dispatcher,
		timeout:    timeout,
	}
}

// ForwardMessage は転送依頼を処理する。宛先をセッションに解決し、
// websocketsインスタンスごとにまとめ、各グループを並行して送信する。
// エラーを返すのは解決に失敗した場合のみで、送信の失敗はログに記録して
// 握りつぶす。全グループの送信が終わる（またはタイムアウトする）まで
// ブロックする。
func (s *Service) ForwardMessage(ctx context.Context, requester store.Session, req ForwardRequest) error {
	sessions, err := s.resolver.Resolve(ctx, requester, req)
	if err != nil {
		return err
	}

	groups := GroupByInstance(sessions)
	if len(groups) == 0 {
		log.Printf("配送可能な宛先がありません: message=%s", req.Message)
		return nil
	}

	if !s.dispatcher.Ready(ctx) {
		log.Printf("websocketsサービスが未登録のため配送をスキップします: message=%s", req.Message)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var wg sync.WaitGroup
	for instanceID, sessionIDs := range groups {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.dispatcher.Send(ctx, requester, instanceID, sessionIDs, req.Message, req.Data); err != nil {
				log.Printf("グループの送信に失敗しました: instance_id=%s, sessions=%d, err=%v", instanceID, len(sessionIDs), err)
			}
		}()
	}
	wg.Wait()
	return nil
}
