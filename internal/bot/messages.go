package bot

import (
	"fmt"
	"time"

	"github.com/voicehub/voice-gateway/internal/session"
	"github.com/voicehub/voice-gateway/internal/textproc"
)

const welcomeText = `🎙️ **Добро пожаловать в Voice Bot!**

Я умею:
• 🎵 Распознавать голосовые сообщения
• 📊 Создавать сводки по ролям
• ✅ Выделять задачи и действия
• 📝 Форматировать полный текст

**Как пользоваться:**
1. Отправьте голосовое сообщение
2. Дождитесь распознавания
3. Выберите нужное действие

Поддерживаю русский язык и автоматическое определение говорящих.

*Отправьте голосовое сообщение, чтобы начать!*`

const helpText = `❓ **Справка по использованию**

**Команды:**
• /start - Приветствие и инструкции
• /help - Эта справка
• /stats - Статистика вашей сессии

**Функции:**
• **Общая сводка** - Краткий обзор ключевых моментов
• **Полный текст** - Вся транскрипция с маркерами говорящих
• **Выделить задачи** - Список действий и поручений
• **Статистика** - Информация о тексте

**Ограничения:**
• Максимальный размер аудио: 20 МБ
• Поддерживаемые форматы: OGG, MP3, WAV
• Язык распознавания: Русский

**Поддержка:** Если что-то не работает, попробуйте переотправить сообщение.`

const processingText = "🎙️ **Обрабатываю голосовое сообщение...**\n\n⏳ Транскрибирую аудио..."

const fallbackText = "🎙️ Отправьте голосовое сообщение для обработки.\n\nИспользуйте /help для получения справки."

const noSessionText = "❌ Не найдена транскрипция. Отправьте голосовое сообщение."

func transcribedText(duration int, sizeKB float64, chars int) string {
	return fmt.Sprintf(`✅ **Голосовое сообщение распознано!**

📊 **Информация:**
• Длительность: %d сек.
• Размер: %.1f КБ
• Символов в тексте: %d

**Выберите действие:**`, duration, sizeKB, chars)
}

func sessionStatsText(sess *session.Session) string {
	lastActivity := "Не определена"
	status := "Нет активной транскрипции"
	var processed int64
	if sess != nil {
		processed = sess.Processed
		if !sess.LastActivity.IsZero() {
			lastActivity = sess.LastActivity.Format(time.DateTime)
		}
		if sess.HasText() {
			status = "Есть активная транскрипция"
		}
	}
	return fmt.Sprintf(`📊 **Статистика вашей сессии**

• Обработано сообщений: %d
• Последняя активность: %s
• Статус: %s

*Отправьте голосовое сообщение для анализа!*`, processed, lastActivity, status)
}

func textStatsText(stats textproc.TextStats, duration float64, segments int) string {
	withinLimits := "❌ Нет"
	if stats.WithinLimits {
		withinLimits = "✅ Да"
	}
	return fmt.Sprintf(`📈 **СТАТИСТИКА ТЕКСТА**

📊 **Основные показатели:**
• Символов: %d
• Слов: %d
• Строк: %d
• Говорящих: %d
• Время чтения: ~%d мин.

🔧 **Технические:**
• В пределах лимита: %s
• Длительность аудио: %.1f сек.
• Сегментов: %d`,
		stats.Characters, stats.Words, stats.Lines, stats.SpeakersDetected, stats.EstimatedReadingMins,
		withinLimits, duration, segments)
}

func transcriptionErrorText(err error) string {
	return fmt.Sprintf("❌ **Ошибка транскрипции:**\n\n%s", err)
}

func summaryErrorText(err error) string {
	return fmt.Sprintf("❌ **Ошибка генерации сводки:**\n\n%s", err)
}

func tasksErrorText(err error) string {
	return fmt.Sprintf("❌ **Ошибка извлечения задач:**\n\n%s", err)
}

func genericErrorText(err error) string {
	return fmt.Sprintf("❌ **Произошла ошибка:**\n\n%s\n\n*Попробуйте отправить сообщение еще раз.*", err)
}
