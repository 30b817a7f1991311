package services

import (
	"encoding/json"
	"strconv"
	"strings"
)

// PeriodScoreTotal суммирует счёт по периодам из строки результата.
//
// За годы эксплуатации колонка накопила три формата:
//   - JSON-массив: "[2,1]"
//   - список через запятую: "2,1"
//   - одно число (самые старые строки): "2"
//
// Функция принимает все три и никогда не возвращает ошибку: nil, пустая
// строка и неразбираемые фрагменты дают ноль.
func PeriodScoreTotal(raw *string) int {
	if raw == nil {
		return 0
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return 0
	}

	if strings.HasPrefix(s, "[") {
		var periods []json.Number
		if err := json.Unmarshal([]byte(s), &periods); err != nil {
			return 0
		}
		total := 0
		for _, p := range periods {
			if v, err := p.Int64(); err == nil {
				total += int(v)
			}
		}
		return total
	}

	total := 0
	for _, part := range strings.Split(s, ",") {
		if v, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			total += v
		}
	}
	return total
}
