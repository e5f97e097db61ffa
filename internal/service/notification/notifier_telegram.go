package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	"github.com/darkkaiser/capture-server/internal/pkg/version"
	"github.com/darkkaiser/capture-server/internal/service/contract"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

const (
	telegramBotCommandHelp   = "help"
	telegramBotCommandStatus = "status"

	telegramBotCommandInitialCharacter = "/"
)

// telegramNotifier 텔레그램 봇을 통해 알림 메시지를 발송하는 알림 채널입니다.
type telegramNotifier struct {
	notifier

	chatID int64

	bot *tgbotapi.BotAPI
}

func newTelegramNotifier(id contract.NotifierID, token string, chatID int64) (*telegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, fmt.Sprintf("텔레그램 봇('%s')의 초기화가 실패하였습니다", id))
	}

	return &telegramNotifier{
		notifier: newNotifier(id, 10),

		chatID: chatID,

		bot: bot,
	}, nil
}

func (n *telegramNotifier) Run(notificationStopCtx context.Context, notificationStopWaiter *sync.WaitGroup) {
	defer notificationStopWaiter.Done()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updateC := n.bot.GetUpdatesChan(updateConfig)

	applog.WithComponentAndFields("notification.telegram", log.Fields{
		"notifier_id": n.ID(),
		"account":     n.bot.Self.UserName,
	}).Debug("Telegram Notifier의 작업이 시작됨")

	for {
		select {
		case update := <-updateC:
			n.handleUpdate(update)

		case request := <-n.requestC:
			if request == nil {
				continue
			}
			n.send(request)

		case <-notificationStopCtx.Done():
			n.bot.StopReceivingUpdates()

			close(n.requestC)
			n.requestC = nil
			n.bot = nil

			applog.WithComponentAndFields("notification.telegram", log.Fields{
				"notifier_id": n.ID(),
			}).Debug("Telegram Notifier의 작업이 중지됨")

			return
		}
	}
}

// handleUpdate 사용자가 봇으로 보낸 명령어를 처리합니다.
func (n *telegramNotifier) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}

	// 등록되지 않은 ChatID인 경우는 무시한다.
	if update.Message.Chat.ID != n.chatID {
		return
	}

	if !strings.HasPrefix(update.Message.Text, telegramBotCommandInitialCharacter) {
		return
	}

	var m string
	switch update.Message.Text[1:] {
	case telegramBotCommandHelp:
		m = fmt.Sprintf("입력 가능한 명령어는 아래와 같습니다:\n\n"+
			"%shelp\n도움말을 표시합니다.\n\n"+
			"%sstatus\n서버의 버전 정보를 표시합니다.",
			telegramBotCommandInitialCharacter, telegramBotCommandInitialCharacter)

	case telegramBotCommandStatus:
		m = version.Get().String()

	default:
		m = fmt.Sprintf("'%s'는 등록되지 않은 명령어입니다.\n명령어를 모르시면 '%s%s'을 입력하세요.",
			update.Message.Text, telegramBotCommandInitialCharacter, telegramBotCommandHelp)
	}

	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, m)); err != nil {
		applog.WithComponentAndFields("notification.telegram", log.Fields{
			"notifier_id": n.ID(),
		}).Errorf("알림메시지 발송이 실패하였습니다.(error:%s)", err)
	}
}

// send 큐에서 꺼낸 알림 요청을 텔레그램 메시지로 발송합니다.
func (n *telegramNotifier) send(request *notifyRequest) {
	m := request.message
	if request.title != "" {
		m = fmt.Sprintf("<b>[ %s ]</b>\n\n%s", request.title, m)
	}
	if request.errorOccurred {
		m = fmt.Sprintf("%s\n\n*** 오류가 발생하였습니다. ***", m)
	}

	messageConfig := tgbotapi.NewMessage(n.chatID, m)
	messageConfig.ParseMode = tgbotapi.ModeHTML

	if _, err := n.bot.Send(messageConfig); err != nil {
		applog.WithComponentAndFields("notification.telegram", log.Fields{
			"notifier_id": n.ID(),
		}).Errorf("알림메시지 발송이 실패하였습니다.(error:%s)", err)
	}
}
