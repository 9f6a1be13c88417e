package admin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"Booking-Telegram-bot/config"
	"Booking-Telegram-bot/internal/db"
	"Booking-Telegram-bot/internal/logger"
	"Booking-Telegram-bot/internal/messages"
	"Booking-Telegram-bot/internal/services"
	"Booking-Telegram-bot/internal/validate"
)

const helpText = `Команды администратора:

Анкеты:
/admin_profiles — список анкет
/admin_profile <id> — карточка анкеты
/admin_profile_add Имя | возраст | описание | аудио | видео | приватка | канал
/admin_profile_edit <id> <name|age|description|audio|video|private|channel> <значение>
/admin_profile_delete <id>
/admin_profile_photo <id> — подпись к фото (до 3 фото)
/admin_profile_photos_clear <id>
/admin_profile_game <id анкеты> <id игры>
/admin_profile_ungame <id анкеты> <id игры>

Игры:
/admin_games [поиск]
/admin_game_add <название>
/admin_game_rename <id> <название>
/admin_game_delete <id>

Заказы:
/admin_orders
/admin_order <id|#номер>
/admin_order_status <id|#номер> <not_paid|processing|paid>
/admin_order_link <id|#номер> <ссылка>
/admin_order_message <id|#номер>
/admin_order_notify <id|#номер>
/admin_order_cancel <id|#номер>

/admin_backup — резервная копия БД
/admin_restore <файл> — восстановление (PostgreSQL)`

const ordersPageSize = 30

type Handler struct {
	api    *tgbotapi.BotAPI
	store  *db.Store
	orders *services.Orders
	backup *Backup
	cfg    *config.AppConfig
	log    *zap.Logger
}

func NewHandler(api *tgbotapi.BotAPI, store *db.Store, orders *services.Orders, backup *Backup, cfg *config.AppConfig) *Handler {
	return &Handler{
		api:    api,
		store:  store,
		orders: orders,
		backup: backup,
		cfg:    cfg,
		log:    logger.L().Named("admin"),
	}
}

func (h *Handler) IsAdmin(userID int64) bool {
	return h.cfg.IsAdmin(userID)
}

// IsCommand сообщает, адресовано ли сообщение администраторскому обработчику
func (h *Handler) IsCommand(msg *tgbotapi.Message) bool {
	cmd, _ := commandOf(msg)
	return cmd != ""
}

func (h *Handler) send(chatID int64, text string) {
	if _, err := h.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// fail отвечает текстом ошибки валидации либо общим сообщением
func (h *Handler) fail(chatID int64, action string, err error) {
	if m := validate.Message(err); m != "" {
		h.send(chatID, "❌ "+m)
		return
	}
	h.log.Error(action, zap.Error(err))
	h.send(chatID, "❌ Ошибка: "+err.Error())
}

func (h *Handler) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || !h.IsAdmin(msg.From.ID) {
		return
	}
	cmd, args := commandOf(msg)
	chatID := msg.Chat.ID

	switch cmd {
	case "admin_help":
		h.send(chatID, helpText)
	case "admin_profiles":
		h.handleProfiles(ctx, chatID)
	case "admin_profile":
		h.handleProfile(ctx, chatID, args)
	case "admin_profile_add":
		h.handleProfileAdd(ctx, chatID, args)
	case "admin_profile_edit":
		h.handleProfileEdit(ctx, chatID, args)
	case "admin_profile_delete":
		h.handleProfileDelete(ctx, chatID, args)
	case "admin_profile_photo":
		h.handleProfilePhoto(ctx, msg, args)
	case "admin_profile_photos_clear":
		h.handleProfilePhotosClear(ctx, chatID, args)
	case "admin_profile_game":
		h.handleProfileGame(ctx, chatID, args, true)
	case "admin_profile_ungame":
		h.handleProfileGame(ctx, chatID, args, false)
	case "admin_games":
		h.handleGames(ctx, chatID, args)
	case "admin_game_add":
		h.handleGameAdd(ctx, chatID, args)
	case "admin_game_rename":
		h.handleGameRename(ctx, chatID, args)
	case "admin_game_delete":
		h.handleGameDelete(ctx, chatID, args)
	case "admin_orders":
		h.handleOrders(ctx, chatID)
	case "admin_order":
		h.handleOrder(ctx, chatID, args)
	case "admin_order_status":
		h.handleOrderStatus(ctx, chatID, args)
	case "admin_order_link":
		h.handleOrderLink(ctx, chatID, args)
	case "admin_order_message":
		h.handleOrderMessage(ctx, chatID, args)
	case "admin_order_notify":
		h.handleOrderNotify(ctx, chatID, args)
	case "admin_order_cancel":
		h.handleOrderCancel(ctx, chatID, args)
	case "admin_backup":
		h.handleBackup(ctx, chatID)
	case "admin_restore":
		h.handleRestore(ctx, chatID, args)
	default:
		h.send(chatID, "Неизвестная команда. /admin_help — список команд")
		return
	}
	logger.LogAdminAction(msg.From.ID, cmd, args)
}

// --- анкеты ---

func (h *Handler) handleProfiles(ctx context.Context, chatID int64) {
	profiles, err := h.store.ListProfiles(ctx)
	if err != nil {
		h.fail(chatID, "list profiles", err)
		return
	}
	if len(profiles) == 0 {
		h.send(chatID, "Анкет пока нет. Добавить: /admin_profile_add")
		return
	}
	var sb strings.Builder
	sb.WriteString("Анкеты:\n")
	for _, p := range profiles {
		fmt.Fprintf(&sb, "%d. %s — аудио %.0f₽, видео %.0f₽, фото %d, игр %d\n",
			p.ID, p.Name, p.AudioChatPrice, p.VideoChatPrice, len(p.PhotoIDs), len(p.Games))
	}
	h.send(chatID, sb.String())
}

func (h *Handler) handleProfile(ctx context.Context, chatID int64, args string) {
	id, ok := parseUint(args)
	if !ok {
		h.send(chatID, "Использование: /admin_profile <id>")
		return
	}
	p, err := h.store.GetProfile(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		h.send(chatID, "Анкета не найдена")
		return
	}
	if err != nil {
		h.fail(chatID, "get profile", err)
		return
	}
	h.send(chatID, fmt.Sprintf("id %d\n\n%s", p.ID, messages.ProfileCard(p, 0, 1)))
}

func (h *Handler) handleProfileAdd(ctx context.Context, chatID int64, args string) {
	in, err := parseProfileArgs(args)
	if err != nil {
		h.fail(chatID, "parse profile", err)
		return
	}
	p := &db.Profile{
		Name:           in.Name,
		Age:            in.Age,
		Description:    in.Description,
		AudioChatPrice: in.AudioPrice,
		VideoChatPrice: in.VideoPrice,
		PrivatePrice:   in.PrivatePrice,
		ChannelLink:    in.ChannelLink,
	}
	if err := h.store.CreateProfile(ctx, p); err != nil {
		h.fail(chatID, "create profile", err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Анкета «%s» создана, id %d.\nФото: отправьте фото с подписью /admin_profile_photo %d", p.Name, p.ID, p.ID))
}

func (h *Handler) handleProfileEdit(ctx context.Context, chatID int64, args string) {
	parts := strings.SplitN(args, " ", 3)
	if len(parts) < 3 {
		h.send(chatID, "Использование: /admin_profile_edit <id> <поле> <значение>")
		return
	}
	id, ok := parseUint(parts[0])
	if !ok {
		h.send(chatID, "Некорректный id анкеты")
		return
	}
	fields, err := profileUpdate(parts[1], parts[2])
	if err != nil {
		h.fail(chatID, "profile update", err)
		return
	}
	p, err := h.store.UpdateProfile(ctx, id, fields)
	if errors.Is(err, db.ErrNotFound) {
		h.send(chatID, "Анкета не найдена")
		return
	}
	if err != nil {
		h.fail(chatID, "update profile", err)
		return
	}
	h.send(chatID, "✅ Анкета обновлена\n\n"+messages.ProfileCard(p, 0, 1))
}

func (h *Handler) handleProfileDelete(ctx context.Context, chatID int64, args string) {
	id, ok := parseUint(args)
	if !ok {
		h.send(chatID, "Использование: /admin_profile_delete <id>")
		return
	}
	deleted, err := h.store.DeleteProfile(ctx, id)
	switch {
	case errors.Is(err, db.ErrProfileInUse):
		h.send(chatID, "❌ У анкеты есть заказы, удалить её нельзя")
	case err != nil:
		h.fail(chatID, "delete profile", err)
	case !deleted:
		h.send(chatID, "Анкета не найдена")
	default:
		h.send(chatID, "✅ Анкета удалена")
	}
}

func (h *Handler) handleProfilePhoto(ctx context.Context, msg *tgbotapi.Message, args string) {
	chatID := msg.Chat.ID
	id, ok := parseUint(args)
	if !ok || len(msg.Photo) == 0 {
		h.send(chatID, "Отправьте фото с подписью /admin_profile_photo <id>")
		return
	}
	// последний размер самый крупный
	fileID := msg.Photo[len(msg.Photo)-1].FileID
	if _, err := h.store.GetProfile(ctx, id); err != nil {
		h.send(chatID, "Анкета не найдена")
		return
	}
	added, err := h.store.AddProfilePhoto(ctx, id, fileID)
	switch {
	case err != nil:
		h.fail(chatID, "add photo", err)
	case !added:
		h.send(chatID, fmt.Sprintf("❌ У анкеты уже %d фото. Очистить: /admin_profile_photos_clear %d", db.MaxProfilePhotos, id))
	default:
		h.send(chatID, "✅ Фото добавлено")
	}
}

func (h *Handler) handleProfilePhotosClear(ctx context.Context, chatID int64, args string) {
	id, ok := parseUint(args)
	if !ok {
		h.send(chatID, "Использование: /admin_profile_photos_clear <id>")
		return
	}
	cleared, err := h.store.ClearProfilePhotos(ctx, id)
	switch {
	case err != nil:
		h.fail(chatID, "clear photos", err)
	case !cleared:
		h.send(chatID, "Анкета не найдена")
	default:
		h.send(chatID, "✅ Фото удалены")
	}
}

func (h *Handler) handleProfileGame(ctx context.Context, chatID int64, args string, link bool) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		h.send(chatID, "Укажите id анкеты и id игры")
		return
	}
	profileID, ok1 := parseUint(parts[0])
	gameID, ok2 := parseUint(parts[1])
	if !ok1 || !ok2 {
		h.send(chatID, "Некорректный id")
		return
	}
	if link {
		if _, err := h.store.GetProfile(ctx, profileID); err != nil {
			h.send(chatID, "Анкета не найдена")
			return
		}
		if _, err := h.store.GetGame(ctx, gameID); err != nil {
			h.send(chatID, "Игра не найдена")
			return
		}
		added, err := h.store.AddGameToProfile(ctx, profileID, gameID)
		switch {
		case err != nil:
			h.fail(chatID, "link game", err)
		case !added:
			h.send(chatID, "Игра уже привязана к анкете")
		default:
			h.send(chatID, "✅ Игра привязана")
		}
		return
	}
	removed, err := h.store.RemoveGameFromProfile(ctx, profileID, gameID)
	switch {
	case err != nil:
		h.fail(chatID, "unlink game", err)
	case !removed:
		h.send(chatID, "Игра не привязана к анкете")
	default:
		h.send(chatID, "✅ Игра отвязана")
	}
}

// --- игры ---

func (h *Handler) handleGames(ctx context.Context, chatID int64, query string) {
	var (
		games []db.Game
		err   error
	)
	if query != "" {
		games, err = h.store.SearchGames(ctx, query)
	} else {
		games, err = h.store.ListGames(ctx, 0, 0)
	}
	if err != nil {
		h.fail(chatID, "list games", err)
		return
	}
	if len(games) == 0 {
		h.send(chatID, "Игры не найдены")
		return
	}
	var sb strings.Builder
	sb.WriteString("Игры:\n")
	for _, g := range games {
		fmt.Fprintf(&sb, "%d. %s\n", g.ID, g.Name)
	}
	h.send(chatID, sb.String())
}

func (h *Handler) handleGameAdd(ctx context.Context, chatID int64, name string) {
	if name == "" {
		h.send(chatID, "Использование: /admin_game_add <название>")
		return
	}
	g, err := h.store.CreateGame(ctx, name)
	if err != nil {
		h.fail(chatID, "create game", err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Игра «%s» добавлена, id %d", g.Name, g.ID))
}

func (h *Handler) handleGameRename(ctx context.Context, chatID int64, args string) {
	rawID, name, _ := strings.Cut(args, " ")
	id, ok := parseUint(rawID)
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		h.send(chatID, "Использование: /admin_game_rename <id> <название>")
		return
	}
	g, err := h.store.UpdateGame(ctx, id, name)
	if errors.Is(err, db.ErrNotFound) {
		h.send(chatID, "Игра не найдена")
		return
	}
	if err != nil {
		h.fail(chatID, "rename game", err)
		return
	}
	h.send(chatID, "✅ Игра переименована: "+g.Name)
}

func (h *Handler) handleGameDelete(ctx context.Context, chatID int64, args string) {
	id, ok := parseUint(args)
	if !ok {
		h.send(chatID, "Использование: /admin_game_delete <id>")
		return
	}
	deleted, err := h.store.DeleteGame(ctx, id)
	switch {
	case err != nil:
		h.fail(chatID, "delete game", err)
	case !deleted:
		h.send(chatID, "Игра не найдена")
	default:
		h.send(chatID, "✅ Игра удалена")
	}
}

// --- заказы ---

func (h *Handler) findOrder(ctx context.Context, raw string) (*db.Order, error) {
	ref, err := parseOrderRef(raw)
	if err != nil {
		return nil, err
	}
	var o *db.Order
	if ref.number != "" {
		o, err = h.store.GetOrderByNumber(ctx, ref.number)
	} else {
		o, err = h.store.GetOrder(ctx, ref.id)
	}
	if errors.Is(err, db.ErrNotFound) {
		return nil, usage("Заказ не найден")
	}
	return o, err
}

func (h *Handler) handleOrders(ctx context.Context, chatID int64) {
	orders, err := h.store.ListOrders(ctx)
	if err != nil {
		h.fail(chatID, "list orders", err)
		return
	}
	if len(orders) == 0 {
		h.send(chatID, "Заказов пока нет")
		return
	}
	var sb strings.Builder
	sb.WriteString("Заказы (новые первыми):\n")
	for i := range orders {
		if i == ordersPageSize {
			fmt.Fprintf(&sb, "… и ещё %d", len(orders)-ordersPageSize)
			break
		}
		fmt.Fprintf(&sb, "id %d: %s\n", orders[i].ID, messages.OrderLine(&orders[i], h.cfg.Location))
	}
	h.send(chatID, sb.String())
}

func (h *Handler) handleOrder(ctx context.Context, chatID int64, args string) {
	o, err := h.findOrder(ctx, args)
	if err != nil {
		h.fail(chatID, "find order", err)
		return
	}
	h.send(chatID, messages.OrderDetail(o, h.cfg.Location))
}

func (h *Handler) handleOrderStatus(ctx context.Context, chatID int64, args string) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		h.send(chatID, "Использование: /admin_order_status <id|#номер> <not_paid|processing|paid>")
		return
	}
	o, err := h.findOrder(ctx, parts[0])
	if err != nil {
		h.fail(chatID, "find order", err)
		return
	}
	updated, err := h.orders.SetPaymentStatus(ctx, o.ID, parts[1])
	if errors.Is(err, services.ErrInvalidPaymentStatus) {
		h.send(chatID, "❌ Статус должен быть одним из: not_paid, processing, paid")
		return
	}
	if err != nil {
		h.fail(chatID, "set payment status", err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Заказ %s: %s", updated.OrderNumber, messages.PaymentStatusLabel(updated.PaymentStatus)))
}

func (h *Handler) handleOrderLink(ctx context.Context, chatID int64, args string) {
	raw, link, _ := strings.Cut(args, " ")
	link = strings.TrimSpace(link)
	if link == "" {
		h.send(chatID, "Использование: /admin_order_link <id|#номер> <ссылка>")
		return
	}
	o, err := h.findOrder(ctx, raw)
	if err != nil {
		h.fail(chatID, "find order", err)
		return
	}
	if err := h.orders.SetConferenceLink(ctx, o.ID, link); err != nil {
		h.fail(chatID, "set conference link", err)
		return
	}
	h.send(chatID, "✅ Ссылка сохранена для заказа "+o.OrderNumber)
}

func (h *Handler) handleOrderMessage(ctx context.Context, chatID int64, args string) {
	o, err := h.findOrder(ctx, args)
	if err != nil {
		h.fail(chatID, "find order", err)
		return
	}
	if err := h.orders.MessageUser(ctx, o.ID); err != nil {
		h.fail(chatID, "message user", err)
		return
	}
	h.send(chatID, "✅ Сообщение отправлено пользователю заказа "+o.OrderNumber)
}

func (h *Handler) handleOrderNotify(ctx context.Context, chatID int64, args string) {
	o, err := h.findOrder(ctx, args)
	if err != nil {
		h.fail(chatID, "find order", err)
		return
	}
	enabled, err := h.orders.ToggleNotifications(ctx, o.ID)
	if err != nil {
		h.fail(chatID, "toggle notifications", err)
		return
	}
	state := "выключено"
	if enabled {
		state = "включено"
	}
	h.send(chatID, fmt.Sprintf("Напоминание по заказу %s %s", o.OrderNumber, state))
}

func (h *Handler) handleOrderCancel(ctx context.Context, chatID int64, args string) {
	o, err := h.findOrder(ctx, args)
	if err != nil {
		h.fail(chatID, "find order", err)
		return
	}
	cancelled, err := h.orders.Cancel(ctx, o.ID)
	if errors.Is(err, services.ErrCancelProcessing) {
		h.send(chatID, "❌ Оплата заказа в обработке. Сначала смените статус оплаты.")
		return
	}
	if err != nil {
		h.fail(chatID, "cancel order", err)
		return
	}
	h.send(chatID, fmt.Sprintf("✅ Заказ %s отменён (%s)", cancelled.OrderNumber, messages.PaymentStatusLabel(cancelled.PaymentStatus)))
}

// --- бэкапы ---

func (h *Handler) handleBackup(ctx context.Context, chatID int64) {
	filename, err := h.backup.Create(ctx, "backup")
	if err != nil {
		h.fail(chatID, "backup", err)
		return
	}
	file := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filename))
	file.Caption = "Резервная копия БД успешно создана"
	if _, err := h.api.Send(file); err != nil {
		h.log.Warn("send backup", zap.Error(err))
	}
	_ = os.Remove(filename)
}

func (h *Handler) handleRestore(ctx context.Context, chatID int64, args string) {
	if args == "" {
		h.send(chatID, "Укажите имя файла для восстановления")
		return
	}
	if err := h.backup.Restore(ctx, args); err != nil {
		h.fail(chatID, "restore", err)
		return
	}
	h.send(chatID, "Восстановление успешно завершено из файла: "+args)
}
