package bot

import "warble/internal/effects"

const callbackPrefix = "effect_"

// effectsKeyboard lays the catalog out two buttons per row, in catalog order.
func effectsKeyboard(registry *effects.Registry) *InlineKeyboardMarkup {
	list := registry.List()
	markup := &InlineKeyboardMarkup{}
	for i := 0; i < len(list); i += 2 {
		row := []InlineKeyboardButton{{
			Text:         list[i].DisplayName,
			CallbackData: callbackPrefix + list[i].ID,
		}}
		if i+1 < len(list) {
			row = append(row, InlineKeyboardButton{
				Text:         list[i+1].DisplayName,
				CallbackData: callbackPrefix + list[i+1].ID,
			})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, row)
	}
	return markup
}
