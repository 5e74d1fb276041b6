package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/manjeet0006/fullstack-chat/internal/chatstore"
	"github.com/manjeet0006/fullstack-chat/internal/model"
	"github.com/manjeet0006/fullstack-chat/internal/utils/log"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

type (
	// Credentials selects between logging in and creating an account.
	Credentials struct {
		Email    string
		Password string
		FullName string
		Signup   bool
	}

	App struct {
		app      *tview.Application
		userList *tview.List
		chatbox  *tview.TextView
		input    *tview.InputField
		status   *tview.TextView

		api    *Client
		socket *Socket
		store  *chatstore.Store
		self   *model.User

		mu     sync.Mutex
		online map[string]bool
	}
)

func NewApp(api *Client) *App {
	return &App{
		app:    tview.NewApplication(),
		api:    api,
		online: make(map[string]bool),
	}
}

// Run authenticates, connects the realtime channel, and hands control to
// the terminal UI. Blocks until the UI exits.
func (a *App) Run(ctx context.Context, creds Credentials) error {
	var (
		self *model.User
		err  error
	)
	if creds.Signup {
		self, err = a.api.Signup(ctx, creds.FullName, creds.Email, creds.Password)
	} else {
		self, err = a.api.Login(ctx, creds.Email, creds.Password)
	}
	if err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	a.self = self

	a.socket, err = DialSocket(a.api.WebsocketURL(), a.api.Jar())
	if err != nil {
		return fmt.Errorf("connecting realtime channel: %w", err)
	}

	a.store = chatstore.New(a.api, a)
	a.store.SetOnChange(func() {
		a.app.QueueUpdateDraw(a.redraw)
	})
	a.store.SubscribeToMessages(a.socket)
	a.socket.Subscribe(model.EventGetOnlineUsers, a.handleOnlineUsers)

	go a.store.LoadUsers(ctx)

	a.renderUI(ctx)
	return nil
}

func (a *App) Stop(ctx context.Context) {
	if a.socket != nil {
		a.store.UnsubscribeFromMessages(a.socket)
		a.socket.Unsubscribe(model.EventGetOnlineUsers)
		a.socket.Close()
	}
	if err := a.api.Logout(ctx); err != nil {
		log.Debug("logout failed", zap.Error(err))
	}
}

// Notify implements chatstore.Notifier; failures land on the status
// line.
func (a *App) Notify(message string) {
	a.app.QueueUpdateDraw(func() {
		a.status.SetText(fmt.Sprintf("[red]%s[-]", message))
	})
}

// blocking function
func (a *App) renderUI(ctx context.Context) {
	a.userList = tview.NewList().ShowSecondaryText(false)
	a.userList.SetBorder(true).SetTitle(" Chats ")

	a.chatbox = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	a.chatbox.SetBorder(true).SetTitle(" Messages ")

	a.input = tview.NewInputField().
		SetLabel("Message: ").
		SetFieldWidth(0)
	a.input.SetBorder(true).SetTitle(" New Message ")

	a.status = tview.NewTextView().SetDynamicColors(true)

	a.userList.SetSelectedFunc(func(index int, _, _ string, _ rune) {
		users := a.store.Users()
		if index < 0 || index >= len(users) {
			return
		}
		selected := users[index]
		a.app.SetFocus(a.input)
		// Selection first, then the history load; two separate steps.
		go func() {
			a.store.SetSelectedUser(selected)
			a.store.LoadMessages(ctx, selected.ID)
		}()
	})

	a.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := a.input.GetText()
		if text == "" || a.store.SelectedUser() == nil {
			return
		}
		a.input.SetText("")

		go a.store.SendMessage(ctx, model.SendMessageInput{Text: text})
	})

	a.input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyTab {
			a.app.SetFocus(a.userList)
			return nil
		}
		return event
	})
	a.userList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyTab {
			a.app.SetFocus(a.input)
			return nil
		}
		return event
	})

	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.chatbox, 0, 1, false).
		AddItem(a.input, 3, 0, true).
		AddItem(a.status, 1, 0, false)

	layout := tview.NewFlex().
		AddItem(a.userList, 28, 0, false).
		AddItem(right, 0, 1, true)

	if err := a.app.SetRoot(layout, true).SetFocus(a.userList).Run(); err != nil {
		log.Fatal("cannot init app", zap.Error(err))
	}
}

func (a *App) handleOnlineUsers(data json.RawMessage) {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		log.Error("decode getOnlineUsers event failed", zap.Error(err))
		return
	}

	a.mu.Lock()
	a.online = make(map[string]bool, len(ids))
	for _, id := range ids {
		a.online[id] = true
	}
	a.mu.Unlock()

	a.app.QueueUpdateDraw(a.redraw)
}

// redraw rebuilds the widgets from store state. Runs on the UI
// goroutine only.
func (a *App) redraw() {
	users := a.store.Users()
	selected := a.store.SelectedUser()

	a.mu.Lock()
	online := a.online
	a.mu.Unlock()

	a.userList.Clear()
	current := -1
	for i, u := range users {
		label := u.FullName
		if a.store.HasUnread(u.ID) {
			label = fmt.Sprintf("[::b]● %s[-:-:-]", u.FullName)
		}
		if online[u.ID.Hex()] {
			label += " [green](online)[-]"
		}
		a.userList.AddItem(label, "", 0, nil)
		if selected != nil && u.ID == selected.ID {
			current = i
		}
	}
	if current >= 0 {
		a.userList.SetCurrentItem(current)
	}

	a.chatbox.Clear()
	if selected != nil {
		a.chatbox.SetTitle(fmt.Sprintf(" Chat with %s ", selected.FullName))
		if a.store.IsMessagesLoading() {
			fmt.Fprintln(a.chatbox, "loading...")
		}
		for _, msg := range a.store.Messages() {
			body := msg.Text
			if msg.Image != "" {
				body = "[image] " + body
			}
			if msg.SenderID == a.self.ID {
				fmt.Fprintf(a.chatbox, "[yellow]You:[-] %s\n", body)
			} else {
				fmt.Fprintf(a.chatbox, "[green]%s:[-] %s\n", selected.FullName, body)
			}
		}
		a.chatbox.ScrollToEnd()
	}
}
