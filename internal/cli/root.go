// Package cli - терминальный клиент планировщика: обзор дня, список,
// календарь месяца и команды изменения задач.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"taskPlanner/internal/client"
	"taskPlanner/internal/logger"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var ErrNotLoggedIn = errors.New("нужен вход: выполните planner login")

// Options - зависимости команд; нулевые значения заменяются настоящими
type Options struct {
	ProfilePath string
	HTTPClient  *http.Client
	Now         func() time.Time
}

type runtime struct {
	opts    Options
	server  string
	verbose bool
	profile Profile
}

func (r *runtime) now() time.Time {
	if r.opts.Now != nil {
		return r.opts.Now()
	}
	return time.Now()
}

func (r *runtime) api(token string) *client.Client {
	var options []client.Option
	if r.opts.HTTPClient != nil {
		options = append(options, client.WithHTTPClient(r.opts.HTTPClient))
	}
	return client.New(r.profile.Server, token, options...)
}

// store загружает список задач текущего пользователя. Откаты изменений
// выводятся в stderr команды.
func (r *runtime) store(cmd *cobra.Command) (*client.Store, error) {
	if r.profile.Token == "" {
		return nil, ErrNotLoggedIn
	}

	store := client.NewStore(r.api(r.profile.Token))
	store.Subscribe(func(m client.Mutation) {
		if m.State == client.StateRolledBack && m.Kind != client.MutationCreate {
			fmt.Fprintln(cmd.ErrOrStderr(), "Изменение отменено, список перечитан с сервера")
		}
	})

	if err := store.Refresh(cmd.Context()); err != nil {
		if client.IsUnauthorized(err) {
			return nil, fmt.Errorf("%w (%v)", ErrNotLoggedIn, err)
		}
		return nil, err
	}
	return store, nil
}

// resolveID принимает полный id или однозначный префикс из списка
func resolveID(store *client.Store, arg string) (uuid.UUID, error) {
	if id, err := uuid.Parse(arg); err == nil {
		return id, nil
	}

	prefix := strings.ToLower(arg)
	var found []uuid.UUID
	for _, t := range store.Tasks() {
		if strings.HasPrefix(t.ID.String(), prefix) {
			found = append(found, t.ID)
		}
	}

	switch len(found) {
	case 0:
		return uuid.Nil, fmt.Errorf("задача %q не найдена", arg)
	case 1:
		return found[0], nil
	default:
		return uuid.Nil, fmt.Errorf("префикс %q подходит к %d задачам", arg, len(found))
	}
}

func NewRootCmd(opts Options) *cobra.Command {
	r := &runtime{opts: opts}

	root := &cobra.Command{
		Use:   "planner",
		Short: "Терминальный клиент планировщика задач",
		Long: `planner показывает задачи с сервера планировщика и меняет их.

Без подкоманды выводится обзор дня.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if r.verbose {
				if err := logger.Init(true); err != nil {
					return err
				}
			}

			path := r.opts.ProfilePath
			if path == "" {
				var err error
				if path, err = DefaultProfilePath(); err != nil {
					return err
				}
				r.opts.ProfilePath = path
			}

			profile, err := LoadProfile(path)
			if err != nil {
				return err
			}
			if r.server != "" {
				profile.Server = r.server
			}
			r.profile = profile
			return nil
		},
	}

	root.PersistentFlags().StringVar(&r.opts.ProfilePath, "profile", opts.ProfilePath, "путь к профилю (по умолчанию ~/.config/planner/profile.yml)")
	root.PersistentFlags().StringVar(&r.server, "server", "", "адрес сервера вместо указанного в профиле")
	root.PersistentFlags().BoolVarP(&r.verbose, "verbose", "v", false, "подробный журнал запросов")

	today := newTodayCmd(r)
	root.RunE = today.RunE

	root.AddCommand(
		newLoginCmd(r),
		newLogoutCmd(r),
		today,
		newListCmd(r),
		newCalendarCmd(r),
		newDayCmd(r),
		newAddCmd(r),
		newEditCmd(r),
		newDoneCmd(r),
		newMoveCmd(r),
		newRemoveCmd(r),
	)
	return root
}

// Execute - точка входа cmd/planner
func Execute(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd(Options{})
	root.Version = version
	root.SetVersionTemplate(`{{printf "planner %s\n" .Version}}`)

	err := root.ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		stop()
		os.Exit(1)
	}
}
