// Package main provides localization for the unbundle CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Extract frames, audio and subtitles from video files": "動画ファイルからフレーム・音声・字幕を抽出",

		// Global flags
		"Log level (debug, info, warn, error)":                           "ログレベル（debug, info, warn, error）",
		"Suppress log output and progress bars":                          "ログ出力とプログレスバーを抑制",
		"FFmpeg library log level (quiet, error, warning, info, debug)":  "FFmpegライブラリのログレベル（quiet, error, warning, info, debug）",
		"Track index among streams of the same kind (0 = first)":         "同種ストリーム内のトラック番号（0 = 先頭）",
		"Hardware decoding (auto, none, or a device type such as cuda)":  "ハードウェアデコード（auto, none, またはcudaなどのデバイス種別）",

		// Command usages
		"Show container and stream metadata":                          "コンテナとストリームのメタデータを表示",
		"Extract frames as image files":                               "フレームを画像ファイルとして抽出",
		"Extract a single frame":                                      "1フレームを抽出",
		"Extract an audio track":                                      "音声トラックを抽出",
		"Extract a subtitle track":                                    "字幕トラックを抽出",
		"Generate a thumbnail image":                                  "サムネイル画像を生成",
		"Render a contact sheet of evenly spaced frames":              "等間隔フレームのコンタクトシートを描画",
		"Export a frame range as an animated GIF":                     "フレーム範囲をアニメーションGIFとして出力",
		"Render an audio waveform image":                              "音声波形画像を描画",
		"Measure peak and RMS loudness of an audio track":             "音声トラックのピークとRMSラウドネスを測定",
		"Rewrap streams into another container without re-encoding":   "再エンコードせずにストリームを別コンテナへ入れ直す",
		"Run a YAML job file producing multiple outputs from one input": "YAMLジョブファイルを実行し1つの入力から複数の出力を生成",

		// Selection flags
		"Comma-separated frame numbers (e.g. 0,24,48)": "カンマ区切りのフレーム番号（例: 0,24,48）",
		"Extract every Nth frame":                      "Nフレームごとに抽出",
		"Extract one frame every N seconds":            "N秒ごとに1フレーム抽出",
		"Range start in seconds":                       "範囲の開始秒",
		"Range end in seconds":                         "範囲の終了秒",
		"Frame number to extract":                      "抽出するフレーム番号",
		"Timestamp in seconds instead of a frame number": "フレーム番号の代わりのタイムスタンプ（秒）",

		// Shape flags
		"Output width (0 = derive from height or keep source)":  "出力の幅（0 = 高さから算出または元のまま）",
		"Output height (0 = derive from width or keep source)":  "出力の高さ（0 = 幅から算出または元のまま）",
		"Pixel format (rgb, rgba, gray)":                        "ピクセルフォーマット（rgb, rgba, gray）",
		"Image file type (png, jpg)":                            "画像ファイル形式（png, jpg）",
		"Parallel decoder count (1 = sequential)":               "並列デコーダ数（1 = 逐次）",

		// Output flags
		"Output directory":                                                  "出力ディレクトリ",
		"Output image path (.png or .jpg)":                                  "出力画像パス（.pngまたは.jpg）",
		"Output file (default: input name with the format extension)":       "出力ファイル（デフォルト: 入力名＋形式の拡張子）",
		"Output file (default: stdout)":                                     "出力ファイル（デフォルト: 標準出力）",
		"Output PNG path":                                                   "出力PNGパス",
		"Output GIF path":                                                   "出力GIFパス",
		"Output file; its extension selects the container":                  "出力ファイル（拡張子でコンテナを選択）",
		"Audio format (wav, mp3, flac, aac; default from the output extension)": "音声形式（wav, mp3, flac, aac。デフォルトは出力拡張子から）",
		"Subtitle format (srt, vtt, raw; default from the output extension)":    "字幕形式（srt, vtt, raw。デフォルトは出力拡張子から）",

		// Thumbnail / grid / gif flags
		"Timestamp in seconds to take the thumbnail from":          "サムネイルを取得するタイムスタンプ（秒）",
		"Frame number instead of a timestamp":                      "タイムスタンプの代わりのフレーム番号",
		"Pick the most detailed frame from evenly spaced candidates": "等間隔の候補から最も精細なフレームを選択",
		"Candidate count for --smart":                              "--smartの候補数",
		"Longest edge of the thumbnail in pixels":                  "サムネイルの長辺（ピクセル）",
		"Grid columns":                                             "グリッドの列数",
		"Grid rows":                                                "グリッドの行数",
		"Width of each cell in pixels":                             "各セルの幅（ピクセル）",
		"Omit timestamp captions":                                  "タイムスタンプの注記を省略",
		"TTF font file for captions":                               "注記用のTTFフォントファイル",
		"Delay between frames in hundredths of a second":           "フレーム間の遅延（1/100秒単位）",
		"Loop count (0 = forever, -1 = play once)":                 "ループ回数（0 = 無限, -1 = 1回のみ）",
		"Number of reduction bins":                                 "集約ビンの数",
		"Image width in pixels":                                    "画像の幅（ピクセル）",
		"Image height in pixels":                                   "画像の高さ（ピクセル）",

		// Remux flags
		"Drop video streams":    "映像ストリームを除外",
		"Drop audio streams":    "音声ストリームを除外",
		"Drop subtitle streams": "字幕ストリームを除外",

		// Results
		"Saved %d frames to %s":           "%dフレームを%sに保存しました",
		"Saved frame %d (t=%.3fs) to %s":  "フレーム%d（t=%.3f秒）を%sに保存しました",
		"Saved %s audio to %s":            "%s音声を%sに保存しました",
		"Saved subtitles to %s":           "字幕を%sに保存しました",
		"Saved thumbnail to %s":           "サムネイルを%sに保存しました",
		"Saved %dx%d grid to %s":          "%dx%dグリッドを%sに保存しました",
		"Saved GIF to %s":                 "GIFを%sに保存しました",
		"Saved waveform (%d bins) to %s":  "波形（%dビン）を%sに保存しました",
		"Remuxed %s to %s":                "%sを%sにリマックスしました",
		"Output %d/%d: %s -> %s":          "出力 %d/%d: %s -> %s",
		"Job complete: %d outputs from %s": "ジョブ完了: %d出力（入力: %s）",

		// Runtime
		"Error: %v":                     "エラー: %v",
		"Interrupted, shutting down...": "中断されました。終了します...",
	})
}
