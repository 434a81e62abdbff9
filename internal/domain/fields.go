package domain

import "sort"

// Fields - структурированные метаданные событий (ключ → значение).
type Fields map[string]any

// Merge возвращает новую карту: f, дополненную other (значения other побеждают).
func (f Fields) Merge(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// KeysAndValues - плоский список ключ/значение в порядке сортировки ключей (для zap *w-методов).
func (f Fields) KeysAndValues() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]any, 0, len(f)*2)
	for _, k := range keys {
		kv = append(kv, k, f[k])
	}
	return kv
}
