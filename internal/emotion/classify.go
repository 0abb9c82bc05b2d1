package emotion

import "strings"

// Keyword weights per affect. Token match against the trigger, case-insensitive.
// Russian keywords kept alongside English ones since triggers arrive in both.
var keywordWeights = map[Affect]map[string]float64{
	AffectJoy: {
		"успех":   0.8,
		"радость": 0.7,
		"победа":  0.7,
		"отлично": 0.5,
		"success": 0.8,
		"win":     0.6,
		"great":   0.4,
	},
	AffectCuriosity: {
		"вопрос":    0.6,
		"интересно": 0.7,
		"новое":     0.5,
		"почему":    0.5,
		"question":  0.6,
		"curious":   0.7,
		"new":       0.3,
	},
	AffectSatisfaction: {
		"завершено": 0.7,
		"готово":    0.6,
		"выполнено": 0.7,
		"done":      0.6,
		"complete":  0.6,
		"finished":  0.5,
	},
	AffectFrustration: {
		"ошибка":  0.7,
		"провал":  0.8,
		"сбой":    0.6,
		"error":   0.7,
		"failure": 0.8,
		"stuck":   0.5,
	},
	AffectCalm: {
		"рутина":     0.4,
		"тишина":     0.5,
		"routine":    0.4,
		"quiet":      0.5,
		"background": 0.3,
	},
}

// Contextual bonuses: substring match against the context field.
var contextBonuses = map[Affect]map[string]float64{
	AffectCuriosity:    {"обучение": 0.3, "learning": 0.3},
	AffectSatisfaction: {"достижение": 0.3, "achievement": 0.3},
	AffectCalm:         {"фон": 0.2, "idle": 0.2},
}

// Classify scores each affect by keyword weights in trigger plus contextual
// bonuses, and returns the winner. Equal scores resolve to the earliest label
// in AllAffects order, so the result is deterministic.
func Classify(trigger, context string) Affect {
	tokens := strings.Fields(strings.ToLower(trigger))
	ctx := strings.ToLower(context)

	best := AffectCalm
	bestScore := -1.0
	for _, a := range AllAffects() {
		score := 0.0
		for _, tok := range tokens {
			score += keywordWeights[a][tok]
		}
		for sub, bonus := range contextBonuses[a] {
			if strings.Contains(ctx, sub) {
				score += bonus
			}
		}
		if score > bestScore {
			best = a
			bestScore = score
		}
	}
	return best
}
