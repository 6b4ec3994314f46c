package i18n

import "sync"

// Translator retrieves localized messages for error codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "found").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_identifier":
			return "識別子が不正です"
		case "invalid_value":
			if data["expected"] != "" && data["found"] != "" {
				return data["expected"] + " が必要ですが " + data["found"] + " が見つかりました"
			}
			return "値が不正です"
		case "selection_empty":
			return "必須の値が見つかりません"
		case "extraction_failed":
			return "抽出に失敗しました"
		case "invalid_schema":
			return "スキーマ定義が不正です"
		case "parse_error":
			return "解析エラー"
		}
	default: // "en"
		switch code {
		case "invalid_identifier":
			return "invalid identifier"
		case "invalid_value":
			if data["expected"] != "" && data["found"] != "" {
				return "expected " + data["expected"] + ", found " + data["found"]
			}
			return "invalid value"
		case "selection_empty":
			return "required value missing"
		case "extraction_failed":
			return "extraction failed"
		case "invalid_schema":
			return "invalid schema"
		case "parse_error":
			return "parse error"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
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
