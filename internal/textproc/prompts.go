package textproc

// Prompt templates carried over from the production bot. The %s slot takes
// the (possibly truncated) transcript text.

const summarySystem = `Ты — помощник для анализа транскрибированных голосовых сообщений.
Твоя задача — создавать краткие, структурированные сводки.`

const summaryPrompt = `Вот транскрибированный текст голосового сообщения с маркировкой говорящих:

%s

Создай краткую ОБЩУЮ СВОДКУ, которая включает:
1. Ключевые моменты и темы обсуждения
2. Основные договорённости или решения
3. Важные выводы
4. Вклад каждого говорящего

Организуй сводку по ролям/говорящим, если в тексте несколько участников.
Будь кратким, но информативным. Максимум 300 слов.`

const tasksSystem = `Ты — помощник для извлечения задач и действий из текста.
Ты должен находить конкретные, выполнимые задачи.`

const tasksPrompt = `Вот транскрибированный текст голосового сообщения:

%s

Извлеки из текста ВСЕ ЗАДАЧИ И ДЕЙСТВИЯ, которые нужно выполнить:

Формат ответа:
📋 **ЗАДАЧИ И ДЕЙСТВИЯ:**

• **[Исполнитель]** - Описание задачи
• **[Исполнитель]** - Описание задачи
...

Если исполнитель не указан явно, используй **[Не указан]**.
Если задач нет, напиши: "❌ Конкретных задач в сообщении не обнаружено."

Ищи:
- Прямые поручения ("сделай", "подготовь", "отправь")
- Обязательства ("я сделаю", "мне нужно")
- Планы ("нужно", "необходимо", "следует")
- Дедлайны и временные рамки`

const fullTextHeader = "📝 **ПОЛНАЯ ТРАНСКРИПЦИЯ**"

const fullTextFooter = "---\n💡 *Транскрибировано с помощью AI. Возможны неточности.*"
