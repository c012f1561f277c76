// Package post builds generation prompts and shapes generated text into channel posts.
package post

import (
	"fmt"
	"strings"

	"telegram-news-editor/internal/domain/model"
)

const newsCommentaryTemplate = `
Ты — личный новостной ассистент, пишущий от лица гражданина России, реагируя на свежие заголовки.

Вот новость:

"%s"

Сгенерируй полноценный пост по шаблону:

1. Сначала — краткая суть новости (1–2 предложения), одной строкой, это заголовок.
2. Затем — комментарий от первого лица (2–3 предложения).
3. Раздели смысловые части эмодзи.
4. Пиши иронично и по-человечески, прямолинейно или саркастично, в зависимости от содержания новости.
5. Не добавляй воду, канцелярит, клише. Пиши живо, от лица россиянина.

📌 Формат поста:

[Эмодзи] [Краткая суть новости]

[Эмодзи] Мой комментарий: [твой комментарий]

Выводи строго по формату. Не повторяй инструкций.
`

const freeCopyTemplate = `
Ты — копирайтер, создающий короткие, выразительные посты от лица мужчины 35 лет. Вот задача:

%s

Формат:
**❗️[Заголовок]**

[Текст поста]
`

const revisionDirective = "\n\nКомментарий редактора:\n%s\n\n" +
	"Перепиши весь пост целиком с учётом замечаний редактора. " +
	"Не добавляй исходный текст, не повторяй инструкции, просто выдай финальный пост."

const styleDirective = "\n\nСтиль комментария: %s"

// styleLabels are the directive wordings for each preset style.
var styleLabels = map[model.Style]string{
	model.StyleStrict:    "строго",
	model.StyleIronic:    "с иронией",
	model.StyleShort:     "кратко",
	model.StyleEmotional: "эмоционально",
}

// PromptRequest carries everything that shapes one generation call.
type PromptRequest struct {
	Seed         string
	Kind         model.ModeKind
	Style        model.Style
	RevisionNote string
}

// BuildPrompt composes the text sent to the generation service.
// The style directive always precedes the revision directive.
func BuildPrompt(req PromptRequest) string {
	var b strings.Builder
	if req.Kind == model.KindFreeCopy {
		fmt.Fprintf(&b, freeCopyTemplate, req.Seed)
	} else {
		fmt.Fprintf(&b, newsCommentaryTemplate, req.Seed)
	}
	if req.Style != model.StyleNone {
		fmt.Fprintf(&b, styleDirective, StyleDirective(req.Style))
	}
	if note := strings.TrimSpace(req.RevisionNote); note != "" {
		fmt.Fprintf(&b, revisionDirective, note)
	}
	return b.String()
}

// StyleDirective returns the wording used for a style; unknown tags are passed through.
func StyleDirective(st model.Style) string {
	if l, ok := styleLabels[st]; ok {
		return l
	}
	return string(st)
}
