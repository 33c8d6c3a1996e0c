package bot

import (
	"fmt"

	"github.com/codebuildervaibhav/video-translator-bot/internal/pipeline"
)

// DefaultMaxVideoBytes is the size ceiling shown when none is configured.
const DefaultMaxVideoBytes = 50 * 1024 * 1024

// WelcomeText answers /start. maxVideoBytes is the configured size ceiling.
func WelcomeText(maxVideoBytes int64) string {
	return fmt.Sprintf(welcomeFormat, limitText(maxVideoBytes))
}

// HelpText answers /help.
func HelpText(maxVideoBytes int64) string {
	return fmt.Sprintf(helpFormat, limitText(maxVideoBytes))
}

func limitText(maxVideoBytes int64) string {
	if maxVideoBytes <= 0 {
		maxVideoBytes = DefaultMaxVideoBytes
	}
	return pipeline.FormatLimit(maxVideoBytes)
}

const welcomeFormat = `🎬 *ברוכים הבאים לבוט תרגום הסרטונים!*

אני מתרגם סרטונים מאנגלית לעברית ומוסיף כתוביות.

*📖 איך להשתמש:*
1️⃣ שלח לי סרטון (עד %s)
2️⃣ המתן בסבלנות - העיבוד לוקח זמן
3️⃣ קבל את הסרטון עם כתוביות בעברית!

*⚠️ חשוב לדעת:*
• הסרטון חייב להכיל דיבור באנגלית ברורה
• זמן עיבוד: כ-5-10 דקות לסרטון של 5 דקות
• סרטונים קצרים (1-5 דקות) עובדים הכי טוב

*🚀 מוכן? שלח לי סרטון!*

לעזרה נוספת: /help`

const helpFormat = `🆘 *מדריך שימוש*

*⏱️ זמני עיבוד משוערים:*
• 1 דקת וידאו = ~2-3 דקות עיבוד
• 3 דקות וידאו = ~5-8 דקות עיבוד
• 5 דקות וידאו = ~10-15 דקות עיבוד

*📹 פורמטים נתמכים:*
MP4, AVI, MOV, MKV - כל פורמט שטלגרם תומך בו

*📏 הגבלות:*
• גודל מקסימלי: %s
• אורך מומלץ: עד 10 דקות
• שפת מקור: אנגלית בלבד

*❓ בעיות נפוצות:*
• "לא זוהה דיבור" → בדוק שיש דיבור ברור בסרטון
• "הסרטון גדול מדי" → נסה לדחוס את הסרטון
• "זמן ארוך מדי" → סבלנות, זה לוקח זמן 😊

*💡 טיפים:*
• סרטונים עם דיבור ברור מתורגמים טוב יותר
• רעשי רקע עלולים להשפיע על האיכות
• כתוביות אוטומטיות - ייתכנו טעויות קלות

🎯 שלח סרטון כדי להתחיל!`
