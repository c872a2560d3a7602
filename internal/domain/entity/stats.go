package entity

// OverallStats — агрегаты по всем попыткам пользователя
type OverallStats struct {
	TotalAttempts int64   `json:"totalAttempts" bson:"total_attempts"`
	AverageScore  float64 `json:"averageScore" bson:"average_score"`
	HighestScore  int     `json:"highestScore" bson:"highest_score"`
	LowestScore   int     `json:"lowestScore" bson:"lowest_score"`
}

// DrillStats — агрегаты пользователя по одному дриллу
type DrillStats struct {
	DrillID      string  `json:"drillId" bson:"_id"`
	DrillTitle   string  `json:"drillTitle,omitempty" bson:"-"`
	Attempts     int64   `json:"attempts" bson:"attempts"`
	BestScore    int     `json:"bestScore" bson:"best_score"`
	AverageScore float64 `json:"averageScore" bson:"average_score"`
}

// UserStats — сводная статистика пользователя
type UserStats struct {
	Overall   OverallStats `json:"overall"`
	TopDrills []DrillStats `json:"topDrills"`
}

// TopDrillsLimit — сколько дриллов попадает в topDrills
const TopDrillsLimit = 5
