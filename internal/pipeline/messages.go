package pipeline

import "fmt"

// User-facing texts. All are sent with Telegram Markdown parse mode.
const (
	progressDownloading = "📥 *מוריד את הסרטון...*"

	progressExtracting = "✅ הסרטון הורד\n🔊 *מחלץ אודיו...*"

	progressTranscribing = "✅ הסרטון הורד\n✅ אודיו חולץ\n🎤 *מתמלל את הדיבור...*\n\n⏳ _זה לוקח כמה דקות..._"

	progressTranslatingFormat = "✅ הסרטון הורד\n✅ אודיו חולץ\n✅ תמלול הושלם (%d משפטים)\n🔄 *מתרגם לעברית...*\n\n⏳ _כמעט גמרנו..._"

	progressMuxing = "✅ הסרטון הורד\n✅ אודיו חולץ\n✅ תמלול הושלם\n✅ תרגום הושלם\n🎬 *מטמיע כתוביות בסרטון...*\n\n⏳ _זה החלק הכי ארוך - המתן בסבלנות..._"

	progressSending = "✅ *כמעט סיימנו! שולח את הסרטון...*"

	// NoSpeechText is the single message for a video without detected speech.
	NoSpeechText = "❌ *לא זוהה דיבור בסרטון*\n\n💡 ודא שהסרטון מכיל דיבור באנגלית ברורה."

	// FailureText is shown for every processing failure. It never carries
	// internal diagnostics.
	FailureText = "❌ *אירעה שגיאה בעיבוד הסרטון*\n\n" +
		"💡 *מה אפשר לנסות:*\n" +
		"• ודא שהסרטון מכיל דיבור באנגלית\n" +
		"• נסה סרטון קצר יותר\n" +
		"• בדוק שאיכות האודיו טובה\n" +
		"• נסה שוב בעוד כמה דקות\n\n" +
		"🆘 עדיין לא עובד? שלח /help"

	// BusyText is sent when the job queue is full.
	BusyText = "⏳ *הבוט עמוס כרגע*\n\nיש יותר מדי סרטונים בתור. נסה שוב בעוד כמה דקות."

	// ResultCaption accompanies the delivered video.
	ResultCaption = "🎉 *הנה הסרטון שלך עם כתוביות בעברית!*\n\n😊 נהנת? שלח עוד סרטון!\n💬 בעיות? שלח /help"
)

func progressTranslating(segments int) string {
	return fmt.Sprintf(progressTranslatingFormat, segments)
}

// TooLargeText reports the configured ceiling and the measured size in MiB.
func TooLargeText(size, limit int64) string {
	return fmt.Sprintf("❌ *הסרטון גדול מדי!*\n\n"+
		"גודל מקסימלי: %s\n"+
		"גודל הסרטון שלך: %s\n\n"+
		"💡 נסה לדחוס את הסרטון או לשלוח סרטון קצר יותר.",
		FormatLimit(limit), FormatMiB(size))
}

// FormatMiB renders a byte count as one-decimal MiB, e.g. "52.0MB".
func FormatMiB(size int64) string {
	return fmt.Sprintf("%.1fMB", float64(size)/(1024*1024))
}

// FormatLimit renders a configured ceiling, whole MiB without a decimal ("50MB").
func FormatLimit(limit int64) string {
	if limit%(1024*1024) == 0 {
		return fmt.Sprintf("%dMB", limit/(1024*1024))
	}
	return FormatMiB(limit)
}
