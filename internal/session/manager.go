package session

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"masterbot/internal/constants"
)

// SessionManager управляет состояниями пользователей и черновиками диалогов.
// SessionManager manages user states and in-progress dialog drafts.
type SessionManager struct {
	userStates     map[int64]string   // Ключ: chatID, Значение: текущее состояние / Key: chatID, Value: current state
	userStateMutex sync.RWMutex       // Мьютекс для userStates и userHistory / Mutex for userStates and userHistory
	userHistory    map[int64][]string // Ключ: chatID, Значение: история состояний / Key: chatID, Value: state history

	tempOrders      map[int64]TempOrderData
	tempOrdersMutex sync.RWMutex

	tempBids      map[int64]TempBidData
	tempBidsMutex sync.RWMutex

	tempReviews      map[int64]TempReviewData
	tempReviewsMutex sync.RWMutex

	tempProfiles      map[int64]TempProfileData
	tempProfilesMutex sync.RWMutex
}

// NewSessionManager создает и возвращает новый экземпляр SessionManager.
// NewSessionManager creates and returns a new instance of SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		userStates:   make(map[int64]string),
		userHistory:  make(map[int64][]string),
		tempOrders:   make(map[int64]TempOrderData),
		tempBids:     make(map[int64]TempBidData),
		tempReviews:  make(map[int64]TempReviewData),
		tempProfiles: make(map[int64]TempProfileData),
	}
}

// --- Управление состоянием пользователя (User State) ---
// --- User State Management ---

// GetState возвращает текущее состояние пользователя.
// Если состояние не установлено, возвращает STATE_IDLE.
// GetState returns the current user state, STATE_IDLE if none is set.
func (sm *SessionManager) GetState(chatID int64) string {
	sm.userStateMutex.RLock()
	defer sm.userStateMutex.RUnlock()
	state, ok := sm.userStates[chatID]
	if !ok {
		return constants.STATE_IDLE
	}
	return state
}

// SetState устанавливает новое состояние для пользователя и добавляет его в историю.
// SetState sets a new state for the user and adds it to history.
func (sm *SessionManager) SetState(chatID int64, state string) {
	sm.userStateMutex.Lock()
	defer sm.userStateMutex.Unlock()

	sm.userStates[chatID] = state
	if _, exists := sm.userHistory[chatID]; !exists {
		sm.userHistory[chatID] = []string{}
	}
	// Предотвращаем дублирование последнего состояния в истории
	// Prevent duplicating the last state in history
	historyLen := len(sm.userHistory[chatID])
	if historyLen == 0 || sm.userHistory[chatID][historyLen-1] != state {
		sm.userHistory[chatID] = append(sm.userHistory[chatID], state)
	}
	log.Debug().Int64("chat_id", chatID).Str("state", state).Msg("состояние сессии установлено")
}

// PopState удаляет последнее состояние из истории и возвращает предыдущее как текущее.
// Если история пуста или содержит одно состояние, устанавливает STATE_IDLE.
// PopState removes the last state from history and returns the previous one as current.
func (sm *SessionManager) PopState(chatID int64) string {
	sm.userStateMutex.Lock()
	defer sm.userStateMutex.Unlock()

	history, ok := sm.userHistory[chatID]
	if ok && len(history) > 1 {
		sm.userHistory[chatID] = history[:len(history)-1]
		newState := sm.userHistory[chatID][len(sm.userHistory[chatID])-1]
		sm.userStates[chatID] = newState
		log.Debug().Int64("chat_id", chatID).Str("state", newState).Msg("возврат к предыдущему состоянию")
		return newState
	}

	sm.userStates[chatID] = constants.STATE_IDLE
	sm.userHistory[chatID] = []string{constants.STATE_IDLE}
	return constants.STATE_IDLE
}

// GetHistory возвращает копию истории состояний пользователя.
// GetHistory returns a copy of the user's state history.
func (sm *SessionManager) GetHistory(chatID int64) []string {
	sm.userStateMutex.RLock()
	defer sm.userStateMutex.RUnlock()
	if history, ok := sm.userHistory[chatID]; ok {
		historyCopy := make([]string, len(history))
		copy(historyCopy, history)
		return historyCopy
	}
	return []string{}
}

// ClearState сбрасывает состояние пользователя к STATE_IDLE и очищает историю.
// ClearState resets the user's state to STATE_IDLE and clears the history.
func (sm *SessionManager) ClearState(chatID int64) {
	sm.userStateMutex.Lock()
	defer sm.userStateMutex.Unlock()
	sm.userStates[chatID] = constants.STATE_IDLE
	sm.userHistory[chatID] = []string{constants.STATE_IDLE}
	log.Debug().Int64("chat_id", chatID).Msg("состояние и история сессии очищены")
}

// --- Управление черновиками заказов (Temp Orders) ---
// --- Temp Order Drafts ---

// GetTempOrder возвращает черновик заказа пользователя.
// Если черновика нет, создает новый пустой.
// GetTempOrder returns the user's order draft, creating an empty one if absent.
func (sm *SessionManager) GetTempOrder(chatID int64) TempOrderData {
	sm.tempOrdersMutex.RLock()
	order, exists := sm.tempOrders[chatID]
	sm.tempOrdersMutex.RUnlock()

	if !exists {
		newOrder := NewTempOrder(chatID)
		sm.tempOrdersMutex.Lock()
		sm.tempOrders[chatID] = newOrder
		sm.tempOrdersMutex.Unlock()
		return newOrder
	}
	return order
}

// UpdateTempOrder обновляет черновик заказа пользователя.
func (sm *SessionManager) UpdateTempOrder(chatID int64, orderData TempOrderData) {
	sm.tempOrdersMutex.Lock()
	defer sm.tempOrdersMutex.Unlock()
	sm.tempOrders[chatID] = orderData
}

// ClearTempOrder удаляет черновик заказа пользователя.
func (sm *SessionManager) ClearTempOrder(chatID int64) {
	sm.tempOrdersMutex.Lock()
	defer sm.tempOrdersMutex.Unlock()
	delete(sm.tempOrders, chatID)
	log.Debug().Int64("chat_id", chatID).Msg("черновик заказа удален")
}

// --- Управление черновиками откликов (Temp Bids) ---

// GetTempBid возвращает черновик отклика мастера.
func (sm *SessionManager) GetTempBid(chatID int64) TempBidData {
	sm.tempBidsMutex.RLock()
	bid, exists := sm.tempBids[chatID]
	sm.tempBidsMutex.RUnlock()

	if !exists {
		newBid := TempBidData{WorkerChatID: chatID}
		sm.tempBidsMutex.Lock()
		sm.tempBids[chatID] = newBid
		sm.tempBidsMutex.Unlock()
		return newBid
	}
	return bid
}

// UpdateTempBid обновляет черновик отклика мастера.
func (sm *SessionManager) UpdateTempBid(chatID int64, bidData TempBidData) {
	sm.tempBidsMutex.Lock()
	defer sm.tempBidsMutex.Unlock()
	sm.tempBids[chatID] = bidData
}

// ClearTempBid удаляет черновик отклика мастера.
func (sm *SessionManager) ClearTempBid(chatID int64) {
	sm.tempBidsMutex.Lock()
	defer sm.tempBidsMutex.Unlock()
	delete(sm.tempBids, chatID)
}

// --- Управление черновиками отзывов (Temp Reviews) ---

// GetTempReview возвращает черновик отзыва пользователя.
func (sm *SessionManager) GetTempReview(chatID int64) TempReviewData {
	sm.tempReviewsMutex.RLock()
	defer sm.tempReviewsMutex.RUnlock()
	return sm.tempReviews[chatID]
}

// UpdateTempReview обновляет черновик отзыва пользователя.
func (sm *SessionManager) UpdateTempReview(chatID int64, reviewData TempReviewData) {
	sm.tempReviewsMutex.Lock()
	defer sm.tempReviewsMutex.Unlock()
	sm.tempReviews[chatID] = reviewData
}

// ClearTempReview удаляет черновик отзыва пользователя.
func (sm *SessionManager) ClearTempReview(chatID int64) {
	sm.tempReviewsMutex.Lock()
	defer sm.tempReviewsMutex.Unlock()
	delete(sm.tempReviews, chatID)
}

// --- Управление черновиками анкет (Temp Profiles) ---

// GetTempProfile возвращает черновик анкеты пользователя.
func (sm *SessionManager) GetTempProfile(chatID int64) TempProfileData {
	sm.tempProfilesMutex.RLock()
	defer sm.tempProfilesMutex.RUnlock()
	return sm.tempProfiles[chatID]
}

// UpdateTempProfile обновляет черновик анкеты пользователя.
func (sm *SessionManager) UpdateTempProfile(chatID int64, profileData TempProfileData) {
	sm.tempProfilesMutex.Lock()
	defer sm.tempProfilesMutex.Unlock()
	sm.tempProfiles[chatID] = profileData
}

// ClearTempProfile удаляет черновик анкеты пользователя.
func (sm *SessionManager) ClearTempProfile(chatID int64) {
	sm.tempProfilesMutex.Lock()
	defer sm.tempProfilesMutex.Unlock()
	delete(sm.tempProfiles, chatID)
}

// AddPortfolioPhoto атомарно добавляет FileID фото в черновик анкеты мастера.
// Возвращает обновленное количество фото и ошибку при дубликате или превышении лимита.
// AddPortfolioPhoto atomically appends a photo FileID to the worker profile draft.
func (sm *SessionManager) AddPortfolioPhoto(chatID int64, fileID string) (int, error) {
	sm.tempProfilesMutex.Lock()
	defer sm.tempProfilesMutex.Unlock()

	profile := sm.tempProfiles[chatID]
	for _, pID := range profile.PortfolioPhotos {
		if pID == fileID {
			return len(profile.PortfolioPhotos), fmt.Errorf("фото %s уже добавлено", fileID)
		}
	}
	if len(profile.PortfolioPhotos) >= constants.MAX_PORTFOLIO_PHOTOS {
		return len(profile.PortfolioPhotos), fmt.Errorf("достигнут лимит фото (%d)", constants.MAX_PORTFOLIO_PHOTOS)
	}
	profile.PortfolioPhotos = append(profile.PortfolioPhotos, fileID)
	sm.tempProfiles[chatID] = profile
	return len(profile.PortfolioPhotos), nil
}
