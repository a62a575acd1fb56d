package service

import (
	"fmt"
	"time"

	"github.com/yuqie6/SkillPractice/internal/schema"
)

// FormatLastPracticed 最后练习时间的相对描述
func FormatLastPracticed(skill *schema.Skill, now time.Time) string {
	if !skill.Practiced() {
		return "从未练习"
	}
	elapsed := now.Sub(time.Unix(*skill.DateLastPracticed, 0))
	days := int(elapsed.Hours() / 24)
	switch {
	case days <= 0:
		return "今天"
	case days < 14:
		return fmt.Sprintf("%d 天前", days)
	case days/30 < 3:
		return fmt.Sprintf("%d 周前", days/7)
	default:
		return fmt.Sprintf("%d 个月前", days/30)
	}
}

// FormatPracticed 练习时长，格式 H:MM:SS
func FormatPracticed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}
