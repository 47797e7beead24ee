// Package metadata は、ローカルのメタデータJSON群からリポジトリ識別子(PID)を拾い上げるパッケージなのだ。
package metadata

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultDir はメタデータJSONを探すデフォルトのディレクトリです。
const DefaultDir = "metadata"

// pidField は MODS 由来のPID配列を保持するフィールド名なのだ
const pidField = "mods_id_bdr_pid_ssim"

// Store はメタデータディレクトリからPIDを読み出す実体です。
type Store struct {
	dir string
}

// NewStore は Store の新しいインスタンスを生成して返すのだ。
// dir が空の場合は DefaultDir が使われます。
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{dir: dir}
}

// PIDs は、ディレクトリ内の全JSONファイルからPIDを抽出して返すのだ。
// 各ファイルのPID配列は先頭の1件だけを採用する。壊れたファイルは警告を出して
// 読み飛ばすだけで、この関数が失敗することはないのだよ。
func (s *Store) PIDs() []string {
	if _, err := os.Stat(s.dir); err != nil {
		slog.Warn("メタデータディレクトリが見つからないのだ", "dir", s.dir)
		return nil
	}

	files, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		slog.Warn("メタデータディレクトリの走査に失敗したのだ", "dir", s.dir, "error", err)
		return nil
	}

	var pids []string
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			slog.Warn("メタデータファイルを読めなかったのだ", "file", filepath.Base(file), "error", err)
			continue
		}

		var record map[string]json.RawMessage
		if err := json.Unmarshal(data, &record); err != nil {
			slog.Warn("不正なJSONのメタデータファイルなのだ", "file", filepath.Base(file), "error", err)
			continue
		}

		raw, ok := record[pidField]
		if !ok {
			slog.Debug("PIDフィールドを持たないメタデータなのだ", "file", filepath.Base(file))
			continue
		}

		var pidList []string
		if err := json.Unmarshal(raw, &pidList); err != nil || len(pidList) == 0 {
			slog.Debug("PIDフィールドの形が想定外なのだ", "file", filepath.Base(file))
			continue
		}

		pids = append(pids, pidList[0])
	}

	slog.Info("メタデータからPIDを収集したのだ", "count", len(pids))
	return pids
}
