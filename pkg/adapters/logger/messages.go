package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Handle lifecycle (info)
		"Opened %s (%s, %s)":             "%s を開きました (%s, %s)",
		"Closed %s":                      "%s を閉じました",
		"Interrupted, shutting down...":  "中断されました。シャットダウン中...",

		// Frame extraction
		"Extracting %d frames":                 "%d フレームを抽出中",
		"Extracting frames %d to %d":           "フレーム %d から %d を抽出中",
		"Seeking to frame %d":                  "フレーム %d へシーク中",
		"Extracted %d frames in %d ms":         "%d フレームを %d ms で抽出しました",
		"Saved frame %d to %s":                 "フレーム %d を %s に保存しました",
		"Splitting %d frames into %d runs":     "%d フレームを %d 個の連続区間に分割",
		"Hardware decoder active: %s":          "ハードウェアデコーダが有効: %s",
		"Hardware setup failed, using software decoding": "ハードウェア初期化に失敗。ソフトウェアデコードを使用します",

		// Audio
		"Extracting audio as %s":          "音声を %s として抽出中",
		"Audio extracted: %d bytes":       "音声抽出完了: %d バイト",
		"Saved audio to %s":               "音声を %s に保存しました",
		"Analyzing loudness":              "ラウドネスを解析中",
		"Generating waveform (%d bins)":   "波形を生成中 (%d ビン)",

		// Subtitles
		"Extracting subtitles":            "字幕を抽出中",
		"Extracted %d subtitle entries":   "%d 件の字幕を抽出しました",
		"Saved subtitles to %s":           "字幕を %s に保存しました",

		// Analysis
		"Scanning keyframes":              "キーフレームをスキャン中",
		"Analyzing frame timing":          "フレームタイミングを解析中",
		"Detecting scene changes":         "シーンチェンジを検出中",
		"Found %d scene changes":          "%d 件のシーンチェンジを検出しました",

		// Export
		"Generating thumbnail at %s":      "%s のサムネイルを生成中",
		"Compositing %dx%d contact sheet": "%dx%d のコンタクトシートを合成中",
		"Exporting GIF (%d frames)":       "GIF を書き出し中 (%d フレーム)",

		// Remux
		"Copying streams to %s":           "ストリームを %s へコピー中",
		"Remux completed: %d packets":     "リマックス完了: %d パケット",

		// Warnings
		"Frame count is an estimate; actual stream may differ": "フレーム数は推定値です。実際のストリームと異なる場合があります",
		"No %s stream found":              "%s ストリームが見つかりません",
	})
}
