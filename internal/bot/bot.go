// Package bot exposes the bolus calculator and kidney check over Telegram.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/diabetesmx/ada-advisor/internal/bot/state"
	"github.com/diabetesmx/ada-advisor/internal/clinical"
	"github.com/diabetesmx/ada-advisor/internal/domain"
	"github.com/diabetesmx/ada-advisor/internal/logger"
	"github.com/diabetesmx/ada-advisor/internal/services"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	states   state.StateManager
	profiles *services.ProfileService
	evals    *services.EvaluationService
	bolus    *services.BolusService
}

func NewBot(token string, states state.StateManager, profiles *services.ProfileService,
	evals *services.EvaluationService, bolus *services.BolusService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Infof("Bot authorized on account %s", api.Self.UserName)
	return &Bot{
		api:      api,
		states:   states,
		profiles: profiles,
		evals:    evals,
		bolus:    bolus,
	}, nil
}

func mainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💉 Bolo de insulina", "bolus"),
			tgbotapi.NewInlineKeyboardButtonData("🫘 Función renal", "kidney"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Evaluar perfil", "profile"),
		),
	)
}

func backMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Menú principal", "main_menu"),
		),
	)
}

func (b *Bot) sendMainMenu(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Elige una opción:")
	msg.ReplyMarkup = mainMenu()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) reply(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainMenu()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil && update.CallbackQuery == nil {
		return nil
	}

	if update.CallbackQuery != nil {
		callback := tgbotapi.NewCallback(update.CallbackQuery.ID, "")
		if _, err := b.api.Request(callback); err != nil {
			logger.Warnf("Failed to answer callback query: %v", err)
		}
		return b.handleCallbackQuery(ctx, update.CallbackQuery)
	}

	if update.Message.IsCommand() {
		return b.handleCommand(ctx, update.Message)
	}

	if update.Message.Text != "" {
		return b.handleText(ctx, update.Message)
	}
	return nil
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	userID := query.From.ID
	chatID := query.Message.Chat.ID

	switch query.Data {
	case "bolus":
		b.states.SetUserState(userID, state.WaitingForBolus)
		msg := tgbotapi.NewMessage(chatID,
			"Escribe en una línea: carbohidratos (g), glucosa actual (mg/dL), glucosa objetivo (mg/dL) y dosis total diaria (U).\nEjemplo: 45 200 110 30")
		msg.ReplyMarkup = backMenu()
		_, err := b.api.Send(msg)
		return err

	case "kidney":
		b.states.SetUserState(userID, state.WaitingForKidney)
		msg := tgbotapi.NewMessage(chatID,
			"Escribe en una línea: creatinina sérica (mg/dL), edad (años) y sexo (f/m).\nEjemplo: 1.2 55 f")
		msg.ReplyMarkup = backMenu()
		_, err := b.api.Send(msg)
		return err

	case "profile":
		b.states.SetUserState(userID, state.WaitingForProfile)
		msg := tgbotapi.NewMessage(chatID, "Escribe el número de expediente del perfil guardado.\nEjemplo: 3")
		msg.ReplyMarkup = backMenu()
		_, err := b.api.Send(msg)
		return err

	case "main_menu":
		b.states.ClearUserState(userID)
		return b.sendMainMenu(chatID)
	}
	return nil
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	userID := message.From.ID
	switch message.Command() {
	case "start":
		b.states.ClearUserState(userID)
		return b.sendMainMenu(message.Chat.ID)
	case "help":
		msg := tgbotapi.NewMessage(message.Chat.ID, `Comandos disponibles:
/start - Mostrar el menú principal
/help - Mostrar este mensaje

💉 Bolo de insulina: calcula la dosis prandial con las reglas 500/1800.
🫘 Función renal: estima la TFG (CKD-EPI 2021) y revisa metformina y iSGLT2.
📋 Evaluar perfil: corre la evaluación completa de un perfil guardado.`)
		_, err := b.api.Send(msg)
		return err
	default:
		msg := tgbotapi.NewMessage(message.Chat.ID, "Comando desconocido. Usa /help para ver las opciones.")
		_, err := b.api.Send(msg)
		return err
	}
}

func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) error {
	userID := message.From.ID
	chatID := message.Chat.ID

	switch b.states.GetUserState(userID) {
	case state.WaitingForBolus:
		reply, err := b.computeBolus(ctx, message.Text)
		if err != nil {
			msg := tgbotapi.NewMessage(chatID, err.Error())
			_, sendErr := b.api.Send(msg)
			return sendErr
		}
		b.states.ClearUserState(userID)
		return b.reply(chatID, reply)

	case state.WaitingForKidney:
		reply, err := b.assessKidney(message.Text)
		if err != nil {
			msg := tgbotapi.NewMessage(chatID, err.Error())
			_, sendErr := b.api.Send(msg)
			return sendErr
		}
		b.states.ClearUserState(userID)
		return b.reply(chatID, reply)

	case state.WaitingForProfile:
		reply, err := b.evaluateProfile(ctx, message.Text)
		if err != nil {
			msg := tgbotapi.NewMessage(chatID, err.Error())
			_, sendErr := b.api.Send(msg)
			return sendErr
		}
		b.states.ClearUserState(userID)
		return b.reply(chatID, reply)

	default:
		msg := tgbotapi.NewMessage(chatID, "Usa el menú para elegir una acción.")
		_, err := b.api.Send(msg)
		return err
	}
}

func (b *Bot) computeBolus(ctx context.Context, text string) (string, error) {
	fields := strings.Fields(text)
	if len(fields) != 4 {
		return "", fmt.Errorf("Formato inválido. Escribe cuatro números: carbohidratos, glucosa actual, objetivo y dosis total diaria.\nEjemplo: 45 200 110 30")
	}
	nums := make([]float64, 4)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return "", fmt.Errorf("No entendí %q: escribe solo números.\nEjemplo: 45 200 110 30", f)
		}
		nums[i] = v
	}

	result, err := b.bolus.Compute(ctx, domain.BolusInput{
		CarbsGrams:     nums[0],
		CurrentGlucose: nums[1],
		TargetGlucose:  nums[2],
		TDD:            nums[3],
	}, nil)
	if err != nil {
		return "", fmt.Errorf("No pude calcular el bolo: la glucosa actual debe ser mayor que cero y ningún valor puede ser negativo.")
	}

	lines := []string{
		fmt.Sprintf("💉 Bolo sugerido: %.1f U", result.Units),
		fmt.Sprintf("Ratio carbohidratos (500/TDD): 1 U por %.1f g", result.ICR),
		fmt.Sprintf("Factor de corrección (1800/TDD): 1 U baja %.0f mg/dL", result.CF),
		fmt.Sprintf("Por carbohidratos: %.1f U, por corrección: %.1f U", result.CarbUnits, result.CorrectionUnits),
	}
	for _, w := range result.Warnings {
		lines = append(lines, "⚠️ "+w)
	}
	return strings.Join(lines, "\n"), nil
}

func (b *Bot) assessKidney(text string) (string, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return "", fmt.Errorf("Formato inválido. Escribe: creatinina, edad y sexo (f/m).\nEjemplo: 1.2 55 f")
	}
	scr, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || scr <= 0 {
		return "", fmt.Errorf("Creatinina inválida: %q", fields[0])
	}
	age, err := strconv.Atoi(fields[1])
	if err != nil || age <= 0 {
		return "", fmt.Errorf("Edad inválida: %q", fields[1])
	}

	var sex domain.Sex
	switch strings.ToLower(fields[2]) {
	case "f", "femenino", "mujer":
		sex = domain.SexFemale
	case "m", "masculino", "hombre":
		sex = domain.SexMale
	default:
		return "", fmt.Errorf("Sexo inválido: escribe f o m.")
	}

	egfr, err := clinical.EGFR(scr, age, sex)
	if err != nil {
		return "", fmt.Errorf("No pude estimar la TFG: revisa los valores.")
	}

	lines := []string{fmt.Sprintf("🫘 TFG estimada (CKD-EPI 2021): %.1f mL/min/1.73m²", egfr)}
	switch clinical.MetforminStatus(&egfr) {
	case clinical.MetforminFull:
		lines = append(lines, "Metformina: dosis plena.")
	case clinical.MetforminReduced:
		lines = append(lines, "⚠️ Metformina: reducir dosis (TFG 30-44).")
	case clinical.MetforminContraindicated:
		lines = append(lines, "⛔ Metformina: contraindicada (TFG < 30).")
	}
	if clinical.SGLT2Allowed(&egfr) {
		lines = append(lines, "iSGLT2: puede iniciarse.")
	} else {
		lines = append(lines, "⛔ iSGLT2: no iniciar (TFG < 20).")
	}
	return strings.Join(lines, "\n"), nil
}

func (b *Bot) evaluateProfile(ctx context.Context, text string) (string, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(text), 10, 32)
	if err != nil {
		return "", fmt.Errorf("Número de expediente inválido: escribe solo el número.\nEjemplo: 3")
	}
	profile, err := b.profiles.GetProfile(ctx, uint(id))
	if err != nil {
		return "", fmt.Errorf("No encontré el perfil %d.", id)
	}
	eval, err := b.evals.Evaluate(ctx, *profile)
	if err != nil {
		return "", fmt.Errorf("No pude evaluar el perfil: revisa sus datos.")
	}

	lines := []string{fmt.Sprintf("📋 %s", profile.Name)}
	if eval.Renal.EGFR != nil {
		lines = append(lines, fmt.Sprintf("TFG: %.1f mL/min/1.73m²", *eval.Renal.EGFR))
	}
	lines = append(lines, fmt.Sprintf("Control: severidad %s, predominio %s",
		eval.Glycemic.Severity, eval.Glycemic.Predominance))

	classes := make([]string, 0, len(eval.Recommendation.Classes))
	for _, c := range eval.Recommendation.Classes {
		classes = append(classes, string(c))
	}
	lines = append(lines, "Clases recomendadas: "+strings.Join(classes, ", "))
	for _, n := range eval.Recommendation.Notices {
		lines = append(lines, "⚠️ "+n)
	}
	if len(eval.NextStep) > 0 {
		lines = append(lines, "Siguiente paso: "+eval.NextStep[0])
	}
	return strings.Join(lines, "\n"), nil
}

func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logger.Info("Bot is now listening for updates...")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Bot is shutting down...")
			return ctx.Err()
		case update := <-updates:
			if err := b.handleUpdate(ctx, update); err != nil {
				logger.Errorf("Error handling update: %v", err)
			}
		}
	}
}
