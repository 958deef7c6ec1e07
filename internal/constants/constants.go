package constants

// Роли пользователей. Роль назначается при онбординге и не меняется:
// смена роли возможна только через удаление и пересоздание профиля.
// User roles. A role is assigned at onboarding and never changes:
// switching requires deleting and recreating the profile.
const (
	ROLE_WORKER = "worker" // мастер
	ROLE_CLIENT = "client" // заказчик
)

// Статусы заказа.
// Order statuses.
const (
	ORDER_STATUS_OPEN            = "open"
	ORDER_STATUS_PENDING_CHOICE  = "pending_choice"
	ORDER_STATUS_MASTER_SELECTED = "master_selected"
	ORDER_STATUS_CONTACT_SHARED  = "contact_shared"
	ORDER_STATUS_DONE            = "done"
	ORDER_STATUS_CANCELED        = "canceled"
)

// Статусы отклика мастера.
// Bid statuses.
const (
	BID_STATUS_ACTIVE   = "active"
	BID_STATUS_REJECTED = "rejected"
	BID_STATUS_SELECTED = "selected"
	BID_STATUS_EXPIRED  = "expired"
)

// Типы бюджета заказа.
const (
	BUDGET_FIXED    = "fixed"
	BUDGET_FLEXIBLE = "flexible"
)

// Редактируемые поля профиля мастера (allow-list для update_worker_field).
// Editable worker profile fields (allow-list for update_worker_field).
const (
	FIELD_NAME             = "name"
	FIELD_PHONE            = "phone"
	FIELD_CITY             = "city"
	FIELD_REGIONS          = "regions"
	FIELD_CATEGORIES       = "categories"
	FIELD_EXPERIENCE       = "experience"
	FIELD_DESCRIPTION      = "description"
	FIELD_PORTFOLIO_PHOTOS = "portfolio_photos"
)

// Состояния диалога (session). Транспортный слой ведёт пользователя по шагам,
// ядро получает только готовые команды.
// Conversation states (session). The transport walks the user through steps,
// the core only receives complete commands.
const (
	STATE_IDLE = "idle"

	STATE_ONBOARD_ROLE = "onboard_role"

	STATE_PROFILE_NAME        = "profile_name"
	STATE_PROFILE_PHONE       = "profile_phone"
	STATE_PROFILE_CITY        = "profile_city"
	STATE_PROFILE_REGIONS     = "profile_regions"
	STATE_PROFILE_CATEGORIES  = "profile_categories"
	STATE_PROFILE_EXPERIENCE  = "profile_experience"
	STATE_PROFILE_DESCRIPTION = "profile_description"
	STATE_PROFILE_PORTFOLIO   = "profile_portfolio"

	STATE_ORDER_TITLE        = "order_title"
	STATE_ORDER_DESCRIPTION  = "order_description"
	STATE_ORDER_CITY         = "order_city"
	STATE_ORDER_ADDRESS      = "order_address"
	STATE_ORDER_CATEGORY     = "order_category"
	STATE_ORDER_BUDGET_TYPE  = "order_budget_type"
	STATE_ORDER_BUDGET_VALUE = "order_budget_value"
	STATE_ORDER_DEADLINE     = "order_deadline"
	STATE_ORDER_CONFIRM      = "order_confirm"

	STATE_BID_PRICE    = "bid_price"
	STATE_BID_DEADLINE = "bid_deadline"
	STATE_BID_COMMENT  = "bid_comment"

	STATE_REVIEW_RATING  = "review_rating"
	STATE_REVIEW_COMMENT = "review_comment"
)

// Префиксы callback-данных.
// Callback data prefixes.
const (
	CALLBACK_PREFIX_ONBOARD_ROLE  = "onboard_role"   // onboard_role_worker
	CALLBACK_PREFIX_ORDER_CATEGORY = "ord_cat"       // ord_cat_plumbing
	CALLBACK_PREFIX_BUDGET_TYPE   = "budget"         // budget_fixed
	CALLBACK_PREFIX_SELECT_BID    = "select_bid"     // select_bid_<orderID>_<bidID>
	CALLBACK_PREFIX_PLACE_BID     = "place_bid"      // place_bid_<orderID>
	CALLBACK_PREFIX_WITHDRAW_BID  = "withdraw_bid"   // withdraw_bid_<bidID>
	CALLBACK_PREFIX_COMPLETE      = "complete_order" // complete_order_<orderID>
	CALLBACK_PREFIX_CANCEL        = "cancel_order"   // cancel_order_<orderID>
	CALLBACK_PREFIX_REVIEW        = "review"         // review_<orderID>_<toUserID>
	CALLBACK_PREFIX_FEED_PAGE     = "feed_page"      // feed_page_<n>
	CALLBACK_PREFIX_REVIEW_RATING = "review_rating"  // review_rating_<1..5>

	CALLBACK_PREFIX_PROFILE_CATEGORY = "prof_cat"       // prof_cat_plumbing (мульти-выбор)
	CALLBACK_PREFIX_PROFILE_DONE     = "prof_done"      // завершение мульти-выбора / загрузки
	CALLBACK_PREFIX_ORDER_CONFIRM    = "order_confirm"  // order_confirm_yes / order_confirm_no
	CALLBACK_PREFIX_DELETE_PROFILE   = "delete_profile" // delete_profile_confirm
	CALLBACK_PREFIX_MY_BIDS_PAGE     = "bids_page"      // bids_page_<orderID>_<n>
)

// Пагинация.
const (
	OrdersPerPage = 10
	BidsPerPage   = 10
)

// Лимиты вводимых данных.
// Input limits.
const (
	MAX_PORTFOLIO_PHOTOS = 10
	MAX_TITLE_LENGTH     = 100
	MAX_COMMENT_LENGTH   = 500
)

// Категории услуг.
// Service categories.
const (
	CAT_PLUMBING    = "plumbing"
	CAT_ELECTRICS   = "electrics"
	CAT_FINISHING   = "finishing"
	CAT_FURNITURE   = "furniture"
	CAT_APPLIANCES  = "appliances"
	CAT_OTHER       = "other"
)

var CategoryDisplayMap = map[string]string{
	CAT_PLUMBING:   "Сантехника",
	CAT_ELECTRICS:  "Электрика",
	CAT_FINISHING:  "Отделка и ремонт",
	CAT_FURNITURE:  "Мебель",
	CAT_APPLIANCES: "Бытовая техника",
	CAT_OTHER:      "Другое",
}

var CategoryEmojiMap = map[string]string{
	CAT_PLUMBING:   "🚿",
	CAT_ELECTRICS:  "💡",
	CAT_FINISHING:  "🧱",
	CAT_FURNITURE:  "🪑",
	CAT_APPLIANCES: "🔌",
	CAT_OTHER:      "❓",
}

var OrderStatusDisplayMap = map[string]string{
	ORDER_STATUS_OPEN:            "Открыт",
	ORDER_STATUS_PENDING_CHOICE:  "Есть отклики",
	ORDER_STATUS_MASTER_SELECTED: "Мастер выбран",
	ORDER_STATUS_CONTACT_SHARED:  "Контакты переданы",
	ORDER_STATUS_DONE:            "Завершён",
	ORDER_STATUS_CANCELED:        "Отменён",
}

var OrderStatusEmojiMap = map[string]string{
	ORDER_STATUS_OPEN:            "🆕",
	ORDER_STATUS_PENDING_CHOICE:  "📨",
	ORDER_STATUS_MASTER_SELECTED: "🤝",
	ORDER_STATUS_CONTACT_SHARED:  "📞",
	ORDER_STATUS_DONE:            "✅",
	ORDER_STATUS_CANCELED:        "❌",
}

var BidStatusDisplayMap = map[string]string{
	BID_STATUS_ACTIVE:   "Активен",
	BID_STATUS_REJECTED: "Отклонён",
	BID_STATUS_SELECTED: "Выбран",
	BID_STATUS_EXPIRED:  "Истёк",
}

// Общие текстовые сообщения.
// General text messages.
const (
	AccessDeniedMessage = "❌ У вас нет прав доступа для этого действия."
)
