// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// セッショントークンの検証、パニックリカバリ、CORS設定など、
// サービス全体で共通して使用するミドルウェアを含む。
package middleware
