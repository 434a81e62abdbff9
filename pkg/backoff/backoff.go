// Пакет backoff - политика задержек между повторными попытками обработки.
package backoff

import (
	"math"
	"time"
)

// Значения по умолчанию для экспоненциальной политики.
const (
	DefaultMin        = 1 * time.Second
	DefaultMax        = 10 * time.Second
	DefaultMultiplier = 2.0
)

// Policy - задержка как функция номера попытки.
// Реализации обязаны быть неубывающими по attempt и не иметь побочных эффектов.
type Policy interface {
	IntervalAt(attempt int) time.Duration
}

// Проверка, что Exponential удовлетворяет Policy.
var _ Policy = Exponential{}

// Exponential - min * multiplier^attempt с ограничением сверху max.
type Exponential struct {
	Min        time.Duration
	Max        time.Duration
	Multiplier float64
}

// NewExponential - конструктор с дефолтами для незаданных (<= 0) параметров.
func NewExponential(minInterval, maxInterval time.Duration, multiplier float64) Exponential {
	if minInterval <= 0 {
		minInterval = DefaultMin
	}
	if maxInterval <= 0 {
		maxInterval = DefaultMax
	}
	if maxInterval < minInterval {
		maxInterval = minInterval
	}
	if multiplier <= 0 {
		multiplier = DefaultMultiplier
	}
	return Exponential{Min: minInterval, Max: maxInterval, Multiplier: multiplier}
}

// IntervalAt возвращает задержку перед попыткой attempt+1.
// Отрицательный attempt считается нулём, множитель < 1 - единицей,
// переполнение насыщается до Max: так расписание остаётся неубывающим.
func (e Exponential) IntervalAt(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	mult := e.Multiplier
	if mult < 1 {
		mult = 1
	}

	upper := e.Max
	if upper < e.Min {
		upper = e.Min
	}

	d := float64(e.Min) * math.Pow(mult, float64(attempt))
	if math.IsInf(d, 0) || math.IsNaN(d) || d >= float64(upper) {
		return upper
	}
	return time.Duration(d)
}

// Constant - одинаковая задержка для всех попыток (удобно для тестов и отладки).
type Constant time.Duration

func (c Constant) IntervalAt(int) time.Duration { return time.Duration(c) }
