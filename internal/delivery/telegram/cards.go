package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/vocab-cards-bot/internal/domain/entities"
	"github.com/aliskhannn/vocab-cards-bot/internal/service"
)

// cardsView is the state of the card browser.
type cardsView struct {
	filter   service.FilterOptions
	entries  []entities.Entry
	index    int
	flipped  bool
	stale    bool // entries must be re-filtered before rendering
	restored bool // last category/viewed pointers were applied
}

func newCardsView() *cardsView {
	return &cardsView{
		filter: service.FilterOptions{Category: service.CategoryAll},
		stale:  true,
	}
}

func (v *cardsView) invalidate() {
	v.stale = true
}

func (v *cardsView) current() (entities.Entry, bool) {
	if v.index < 0 || v.index >= len(v.entries) {
		return entities.Entry{}, false
	}
	return v.entries[v.index], true
}

// move shifts the position by delta, wrapping around.
func (v *cardsView) move(delta int) {
	n := len(v.entries)
	if n == 0 {
		return
	}
	v.index = ((v.index+delta)%n + n) % n
	v.flipped = false
}

// setFilter replaces the filter and starts from the first card.
func (v *cardsView) setFilter(f service.FilterOptions) {
	v.filter = f
	v.index = 0
	v.flipped = false
	v.stale = true
}

// refreshCards re-applies the filter, staying on the same entry when it is still listed.
func (h *Handler) refreshCards(ctx context.Context) {
	v := h.cards

	if !v.restored {
		v.restored = true
		v.filter.Category = h.review.LastCategory(ctx)
		if last, ok := h.review.LastViewed(ctx); ok {
			v.entries = []entities.Entry{last}
			v.index = 0
		}
	}

	if !v.stale {
		return
	}

	currentID := ""
	if e, ok := v.current(); ok {
		currentID = e.ID
	}

	v.entries = h.review.Filter(v.filter)
	v.stale = false

	v.index = min(v.index, max(len(v.entries)-1, 0))
	for i, e := range v.entries {
		if e.ID == currentID {
			v.index = i
			break
		}
	}
}

// renderCard builds the card message for the current state.
func (h *Handler) renderCard(ctx context.Context) (string, *tgbotapi.InlineKeyboardMarkup) {
	h.refreshCards(ctx)
	v := h.cards

	e, ok := v.current()
	if !ok {
		text := msgNoMatches
		if h.review.Stats().Total == 0 {
			text = msgNoWords
		}
		kb := buildEmptyCardsKeyboard()
		return text, &kb
	}

	if err := h.review.SetLastViewed(ctx, e.ID); err != nil {
		h.logger.Warn("failed to save last viewed word", zap.Error(err))
	}

	var text string
	if v.flipped {
		text = formatCardBack(e, v.index, len(v.entries), v.filter)
	} else {
		text = formatCardFront(e, v.index, len(v.entries), v.filter)
	}

	kb := buildCardKeyboard(e, h.review.Stats().NeedsReview)
	return text, &kb
}

// showCards sends the card browser as a new message.
func (h *Handler) showCards(ctx context.Context, chatID int64) error {
	text, kb := h.renderCard(ctx)

	msg := newHTMLMessage(chatID, text)
	msg.ReplyMarkup = kb

	h.send(msg)
	return nil
}

func (h *Handler) cardsCommand() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		return h.showCards(ctx, chatID)
	}
}

func (h *Handler) reviewCommand() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		h.refreshCards(ctx)
		h.cards.setFilter(service.FilterOptions{ReviewOnly: true})
		return h.showCards(ctx, chatID)
	}
}

func (h *Handler) searchCommand(query string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		query = strings.TrimSpace(query)
		if query == "" {
			h.send(newHTMLMessage(chatID, msgUseSearch))
			return nil
		}

		h.refreshCards(ctx)
		f := h.cards.filter
		f.Search = query
		h.cards.setFilter(f)
		return h.showCards(ctx, chatID)
	}
}

func (h *Handler) categoriesCommand() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		h.refreshCards(ctx)
		msg := newHTMLMessage(chatID, msgChooseCategory)
		msg.ReplyMarkup = buildCategoriesKeyboard(h.review.Categories(), h.cards.filter)
		h.send(msg)
		return nil
	}
}

// handleCardsCallback processes card browser buttons.
func (h *Handler) handleCardsCallback(ctx context.Context, data callbackData) (callbackView, error) {
	h.refreshCards(ctx)
	v := h.cards

	var notice string

	switch data.param(0) {
	case cardsShow:
		if data.param(1) == service.CategoryAll {
			v.setFilter(service.FilterOptions{Category: service.CategoryAll})
		}
	case cardsFlip:
		v.flipped = !v.flipped
	case cardsNext:
		v.move(1)
	case cardsPrev:
		v.move(-1)
	case cardsMaster:
		e, err := h.review.ToggleMastered(ctx, data.param(1))
		if errors.Is(err, service.ErrEntryNotFound) {
			return callbackView{notice: msgStale}, nil
		}
		if err != nil {
			return callbackView{}, err
		}
		notice = msgUnmarkedMastered
		if e.Mastered {
			notice = msgMarkedMastered
		}
	case cardsSpeak:
		if e, ok := v.current(); ok {
			h.speaker.Speak(e.Term)
		}
		return callbackView{notice: "🔊"}, nil
	case cardsCategories:
		kb := buildCategoriesKeyboard(h.review.Categories(), v.filter)
		return callbackView{text: msgChooseCategory, markup: &kb}, nil
	case cardsReview:
		v.setFilter(service.FilterOptions{ReviewOnly: true})
	default:
		h.logger.Debug("unknown cards callback", zap.String("data", data.Raw))
		return callbackView{}, nil
	}

	text, kb := h.renderCard(ctx)
	return callbackView{text: text, markup: kb, notice: notice}, nil
}

// handleCategoryCallback applies the chosen category.
func (h *Handler) handleCategoryCallback(ctx context.Context, data callbackData) (callbackView, error) {
	categories := h.review.Categories()

	idx, ok := data.intParam(0)
	if !ok || idx < 0 || idx >= len(categories) {
		h.logger.Debug("invalid category callback", zap.String("data", data.Raw))
		return callbackView{notice: msgStale}, nil
	}

	category := categories[idx]
	if err := h.review.SetLastCategory(ctx, category); err != nil {
		return callbackView{}, err
	}

	h.refreshCards(ctx)
	h.cards.setFilter(service.FilterOptions{Category: category})

	text, kb := h.renderCard(ctx)
	return callbackView{text: text, markup: kb}, nil
}
