package intents

import "github.com/yigit/coursebot/internal/app/models/dto"

func plainText(content string) []dto.Message {
	return []dto.Message{{ContentType: dto.ContentTypePlainText, Content: content}}
}

// closeIntent ends the turn with a fulfillment state, echoing the session attributes.
func closeIntent(event *dto.LexEvent, state dto.FulfillmentState, message string) *dto.LexResponse {
	return &dto.LexResponse{
		SessionState: dto.ResponseSessionState{
			DialogAction: dto.DialogAction{Type: dto.DialogActionClose},
			Intent: &dto.Intent{
				Name:  event.SessionState.Intent.Name,
				State: state,
			},
			SessionAttributes: event.SessionState.SessionAttributes,
		},
		Messages: plainText(message),
	}
}

func fulfilled(event *dto.LexEvent, message string) *dto.LexResponse {
	return closeIntent(event, dto.FulfillmentStateFulfilled, message)
}

func failed(event *dto.LexEvent, message string) *dto.LexResponse {
	return closeIntent(event, dto.FulfillmentStateFailed, message)
}

// elicitSlot asks the conversation manager to collect slot, echoing the intent unchanged.
func elicitSlot(event *dto.LexEvent, slot, message string) *dto.LexResponse {
	intent := event.SessionState.Intent
	return &dto.LexResponse{
		SessionState: dto.ResponseSessionState{
			DialogAction: dto.DialogAction{Type: dto.DialogActionElicitSlot, SlotToElicit: slot},
			Intent:       &intent,
		},
		Messages: plainText(message),
	}
}
