package infra

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// PageStoreは取得済みHTMLをソース別のディレクトリに保存します。
// クロール段階と生成段階を分離し、生成段階をネットワークなしで再実行可能にします。
type PageStore struct {
	root string
}

func NewPageStore(root string) *PageStore {
	return &PageStore{root: root}
}

// SavePageはHTMLを保存し、保存先の相対パスを返します。
// ファイル名はURLから決定されるため、同じページの再取得は上書きになります。
func (s *PageStore) SavePage(source, pageURL, html string) (string, error) {
	dir := filepath.Join(s.root, source)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("保存ディレクトリの作成に失敗しました: %w", err)
	}

	sum := sha1.Sum([]byte(pageURL))
	rel := filepath.Join(source, hex.EncodeToString(sum[:])+".html")
	if err := os.WriteFile(filepath.Join(s.root, rel), []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("HTMLの保存に失敗しました: %w", err)
	}
	return rel, nil
}

// LoadPageは保存済みHTMLを読み込みます。
func (s *PageStore) LoadPage(rel string) (string, error) {
	html, err := os.ReadFile(filepath.Join(s.root, rel))
	if err != nil {
		return "", fmt.Errorf("保存済みHTMLの読み込みに失敗しました: %w", err)
	}
	return string(html), nil
}
