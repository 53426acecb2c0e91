package i18n

import "sync/atomic"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "shape").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "configuration_error":
			msg = "レジストリの設定が不正です"
		case "narrowing_error":
			msg = "指定された形状に変換できません"
		case "parse_error":
			msg = "解析エラー"
		case "invalid_type":
			msg = "型が不正です"
		case "duplicate_key":
			msg = "キーが重複しています"
		case "truncated":
			msg = "打ち切られました"
		case "validation":
			msg = "検証に失敗しました"
		}
	default: // "en"
		switch code {
		case "configuration_error":
			msg = "registry misconfigured"
		case "narrowing_error":
			msg = "cannot narrow value"
		case "parse_error":
			msg = "parse error"
		case "invalid_type":
			msg = "invalid type"
		case "duplicate_key":
			msg = "duplicate key"
		case "truncated":
			msg = "truncated"
		case "validation":
			msg = "validation failed"
		}
	}
	if msg == "" {
		return code
	}
	if f := data["field"]; f != "" {
		msg += " (" + f + ")"
	}
	return msg
}

var currentTranslator atomic.Value

func init() { currentTranslator.Store(holder{dictTranslator{lang: "en"}}) }

// holder keeps atomic.Value storing a single concrete type.
type holder struct{ tr Translator }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator.Store(holder{dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	currentTranslator.Store(holder{tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return currentTranslator.Load().(holder).tr.Message(code, data)
}
