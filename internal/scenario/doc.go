// Package scenario はシミュレーションシナリオの実行機能を提供する。
//
// シナリオエンジンは乱数源、メトリクス、イベントバスをまとめ、
// 集団の生成からヒストグラムと要約統計の算出までを行う。
//
// # 機能
//
// - シナリオ定義と検証
// - 定義済みプリセットシナリオ
// - 実行結果のレポート生成
//
// # プリセットシナリオ
//
// - quick: 短時間の動作確認
// - fair: 攻撃成功率50%
// - hardened: 攻撃成功率20%
// - fragile: 攻撃成功率80%
// - large: 大規模な集団
//
// # 使用例
//
//	config := scenario.FairScenario()
//	engine := scenario.New(config)
//	result, err := engine.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report())
package scenario
