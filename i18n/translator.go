package i18n

import "sync"

// Translator retrieves localized titles for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "id" or "element").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dict = map[string]map[string]string{
	"en": {
		"missing_id":             "missing identifier",
		"invalid_id":             "invalid identifier",
		"malformed_uri":          "malformed URI",
		"duplicated_id":          "duplicated identifier",
		"invalid_name":           "invalid name",
		"invalid_type":           "invalid descriptor type",
		"invalid_return_type":    "invalid return type",
		"invalid_href":           "invalid href",
		"invalid_version":        "invalid version",
		"invalid_descriptor":     "invalid descriptor",
		"invalid_documentation":  "invalid documentation",
		"invalid_link":           "invalid link",
		"invalid_extension":      "invalid extension",
		"invalid_document":       "invalid document",
		"unterminated_element":   "unterminated element",
		"unexpected_element":     "unexpected element",
		"unsupported_media_type": "unsupported media type",
		"parse_error":            "parse error",
		"duplicate_key":          "duplicate key",
		"truncated":              "truncated",
	},
	"ja": {
		"missing_id":             "識別子がありません",
		"invalid_id":             "識別子が不正です",
		"malformed_uri":          "URIの形式が不正です",
		"duplicated_id":          "識別子が重複しています",
		"invalid_name":           "名前が不正です",
		"invalid_type":           "ディスクリプタの型が不正です",
		"invalid_return_type":    "戻り値の型が不正です",
		"invalid_href":           "hrefが不正です",
		"invalid_version":        "バージョンが不正です",
		"invalid_descriptor":     "ディスクリプタが不正です",
		"invalid_documentation":  "ドキュメントが不正です",
		"invalid_link":           "リンクが不正です",
		"invalid_extension":      "拡張が不正です",
		"invalid_document":       "文書が不正です",
		"unterminated_element":   "要素が閉じられていません",
		"unexpected_element":     "予期しない要素です",
		"unsupported_media_type": "未対応のメディアタイプです",
		"parse_error":            "解析エラー",
		"duplicate_key":          "キーが重複しています",
		"truncated":              "打ち切られました",
	},
}

func (t dictTranslator) Message(code string, _ map[string]string) string {
	if msg, ok := dict[t.lang][code]; ok {
		return msg
	}
	return code
}

var mu sync.RWMutex

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
