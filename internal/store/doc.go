// Package store は共有プラットフォームDBへの読み取りアダプタを提供する。
//
// アカウント・セッション・キャンペーン・招待のライフサイクルは上流の
// 認証サービスとキャンペーンサービスが所有する。repartitorサービスは
// 通知先の解決のためにこれらを参照するだけで、書き込みは行わない
// （Create系の関数は開発用シードとテストのためのもの）。
package store
