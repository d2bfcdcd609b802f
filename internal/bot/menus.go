package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Теги callback-кнопок меню онбординга.
const (
	callbackShowTerms   = "show_terms"
	callbackGetLink     = "get_link"
	callbackInstruction = "instruction"
	callbackBackToStart = "back_to_start"
)

func supportURL(supportUsername string) string {
	return "https://t.me/" + strings.TrimPrefix(supportUsername, "@")
}

func welcomeText(firstName string) string {
	return fmt.Sprintf(`👋 Привет, %s!

Я помогаю получить 1000 рублей за оформление карты T-Bank Black.

💰 *Как это работает:*
• Ты получаешь 500₽ от банка за оформление карты
• Плюс 500₽ от меня после первой покупки
• Итого: 1000₽ на руки!

📋 *Прежде чем начать, ознакомься с условиями нашего сотрудничества:*`, firstName)
}

func welcomeKeyboard(supportUsername string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Показать условия", callbackShowTerms),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💬 Поддержка", supportURL(supportUsername)),
		),
	)
}

const termsText = `*✅ Условия сотрудничества и конфиденциальности*

*Нажимая «Я согласен», вы подтверждаете, что:*

🔒 *Политика конфиденциальности:*
• Мы НЕ передаем ваши личные данные третьим лицам
• Мы НЕ используем вашу информацию в корыстных целях
• Ваш username и реквизиты для выплаты используются ИСКЛЮЧИТЕЛЬНО для учета выплат
• Все данные удаляются после завершения наших обязательств

📋 *Условия сотрудничества:*
1. Вы действуете полностью добровольно, без принуждения
2. Вы ознакомились с официальными условиями акции банка
3. Вы понимаете схему вознаграждений (1000₽ вам, 2500₽ мне)
4. Вы осознаете, что это частная инициатива, а не предложение банка
5. Выполнение моих обязательств зависит от успешного зачисления бонуса от банка

💡 *Честное партнерство, где каждый получает свою выгоду в рамках акции банка.*`

func termsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Я согласен со всеми условиями", callbackGetLink),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", callbackBackToStart),
		),
	)
}

func linkText(refLink string) string {
	return fmt.Sprintf(`🎉 Отлично! Вот ваша ссылка для оформления:

%s

📝 *Инструкция:*
1. *Оформите карту* по ссылке выше
2. *Совершите покупку* от 500₽ (НЕ: ЖКХ, связь, переводы)
3. *Пришлите скриншот* подтверждения покупки в этот чат
4. *Получите 500₽* от меня в течение 24 часов после проверки

⚠️ *Важно:* карта должна быть оформлена именно по этой ссылке!`, refLink)
}

func linkKeyboard(supportUsername string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📱 Я оформил карту и совершил покупку", callbackInstruction),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💬 Поддержка", supportURL(supportUsername)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", callbackShowTerms),
		),
	)
}

const instructionText = `📸 *Для получения 500₽ пришлите сюда:*
1. *Скриншот* из приложения банка, подтверждающий покупку
2. *Ваши реквизиты* для перевода (номер карты/телефона)

🕐 *Выплата производится в течение 24 часов* после проверки.

❓ *Что должно быть видно на скриншоте:*
- Дата и время операции
- Сумма покупки (от 500₽)
- Не видно конфиденциальных данных (замажьте CVV, полный номер карты)`

func instructionKeyboard(supportUsername string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💬 Поддержка", supportURL(supportUsername)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", callbackGetLink),
		),
	)
}
