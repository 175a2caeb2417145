// Package registry はサービスディレクトリへの読み取りアダプタを提供する。
//
// websocketsサービスの稼働中インスタンスと、外部へ到達するための
// ゲートウェイを検索する。登録・監視は外部の監視基盤が所有しており、
// repartitorサービスは参照のみ行う（Create系の関数は開発用シードと
// テストのためのもの）。
package registry

import (
	"context"
	"database/sql"
	"errors"
	"math/rand/v2"
)

// ServiceKeyWebsockets は接続保持サービスの機能キー。
const ServiceKeyWebsockets = "websockets"

// ErrNoEligibleInstance は有効かつ稼働中のインスタンスが1つも存在しないことを表す。
var ErrNoEligibleInstance = errors.New("有効かつ稼働中のインスタンスが存在しません")

// ErrNoGateway は稼働中のゲートウェイが1つも存在しないことを表す。
var ErrNoGateway = errors.New("稼働中のゲートウェイが存在しません")

// Instance はwebsocketsサービスの1つのインスタンスを表す。
type Instance struct {
	// ID はインスタンスの一意識別子。
	ID string
	// URL はインスタンスのベースURL。
	URL string
	// Active はインスタンスが有効化されているか。
	Active bool
	// Running はインスタンスのプロセスが稼働中か。
	Running bool
}

// Gateway は外部に到達するための1つのゲートウェイを表す。
type Gateway struct {
	// ID はゲートウェイの一意識別子。
	ID string
	// URL はゲートウェイのベースURL。
	URL string
	// Token はゲートウェイの認証トークン。
	Token string
}

// Queries はサービスディレクトリへのクエリ実行オブジェクト。
// 状態を持たないため、複数のゴルーチンから同時に使用できる。
type Queries struct {
	db *sql.DB
}

// New は新しいクエリ実行オブジェクトを生成する。
// dbにはプラットフォームDBへの接続を渡す（スキーマはstoreパッケージが適用する）。
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// WebsocketServiceExists はwebsocketsサービスが登録されているかを返す。
// 未登録は「接続層が配備されていない」ことを意味し、エラーではない。
func (q *Queries) WebsocketServiceExists(ctx context.Context) (bool, error) {
	var id string
	err := q.db.QueryRowContext(ctx,
		"SELECT id FROM services WHERE key = ?", ServiceKeyWebsockets,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RandomActiveInstance は有効かつ稼働中のwebsocketsインスタンスを1つ無作為に返す。
// 候補が存在しない場合はErrNoEligibleInstanceを返す。
func (q *Queries) RandomActiveInstance(ctx context.Context) (Instance, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT i.id, i.url, i.active, i.running
		FROM instances i
		JOIN services s ON s.id = i.service_id
		WHERE s.key = ? AND i.active = 1 AND i.running = 1
		ORDER BY i.rowid`,
		ServiceKeyWebsockets,
	)
	if err != nil {
		return Instance{}, err
	}
	defer func() { _ = rows.Close() }()

	var instances []Instance
	for rows.Next() {
		var i Instance
		if err := rows.Scan(&i.ID, &i.URL, &i.Active, &i.Running); err != nil {
			return Instance{}, err
		}
		instances = append(instances, i)
	}
	if err := rows.Err(); err != nil {
		return Instance{}, err
	}

	if len(instances) == 0 {
		return Instance{}, ErrNoEligibleInstance
	}
	return instances[rand.IntN(len(instances))], nil
}

// RandomGateway は稼働中のゲートウェイを1つ無作為に返す。
// 候補が存在しない場合はErrNoGatewayを返す。
func (q *Queries) RandomGateway(ctx context.Context) (Gateway, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, url, token FROM gateways WHERE running = 1 ORDER BY rowid",
	)
	if err != nil {
		return Gateway{}, err
	}
	defer func() { _ = rows.Close() }()

	var gateways []Gateway
	for rows.Next() {
		var g Gateway
		if err := rows.Scan(&g.ID, &g.URL, &g.Token); err != nil {
			return Gateway{}, err
		}
		gateways = append(gateways, g)
	}
	if err := rows.Err(); err != nil {
		return Gateway{}, err
	}

	if len(gateways) == 0 {
		return Gateway{}, ErrNoGateway
	}
	return gateways[rand.IntN(len(gateways))], nil
}

// CreateServiceParams はサービス登録のパラメータ。
type CreateServiceParams struct {
	// ID はサービスの一意識別子。
	ID string
	// Key はサービスの機能キー。
	Key string
}

// CreateService はサービスを登録する。開発用シードとテストで使用する。
func (q *Queries) CreateService(ctx context.Context, params CreateServiceParams) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO services (id, key) VALUES (?, ?)",
		params.ID, params.Key,
	)
	return err
}

// CreateInstanceParams はインスタンス登録のパラメータ。
type CreateInstanceParams struct {
	// ID はインスタンスの一意識別子。
	ID string
	// ServiceID は所属するサービスのID。
	ServiceID string
	// URL はインスタンスのベースURL。
	URL string
	// Active はインスタンスが有効化されているか。
	Active bool
	// Running はインスタンスのプロセスが稼働中か。
	Running bool
}

// CreateInstance はインスタンスを登録する。開発用シードとテストで使用する。
func (q *Queries) CreateInstance(ctx context.Context, params CreateInstanceParams) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO instances (id, service_id, url, active, running) VALUES (?, ?, ?, ?, ?)",
		params.ID, params.ServiceID, params.URL, params.Active, params.Running,
	)
	return err
}

// CreateGatewayParams はゲートウェイ登録のパラメータ。
type CreateGatewayParams struct {
	// ID はゲートウェイの一意識別子。
	ID string
	// URL はゲートウェイのベースURL。
	URL string
	// Running はゲートウェイが稼働中か。
	Running bool
	// Token はゲートウェイの認証トークン。
	Token string
}

// CreateGateway はゲートウェイを登録する。開発用シードとテストで使用する。
func (q *Queries) CreateGateway(ctx context.Context, params CreateGatewayParams) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO gateways (id, url, running, token) VALUES (?, ?, ?, ?)",
		params.ID, params.URL, params.Running, params.Token,
	)
	return err
}
