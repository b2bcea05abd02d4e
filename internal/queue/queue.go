package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/wildhaven/parkops-backend/internal/config"
	"github.com/wildhaven/parkops-backend/internal/logging"
	"github.com/wildhaven/parkops-backend/internal/rbac"
	"github.com/wildhaven/parkops-backend/internal/store"
)

const (
	TypeEmailDelivery      = "email:delivery"
	TypeEmergencyBroadcast = "emergency:broadcast"
)

type EmailDeliveryPayload struct {
	To      string
	Subject string
	Body    string
}

type EmergencyBroadcastPayload struct {
	EmergencyID uuid.UUID
}

type TaskQueue struct {
	client *asynq.Client
}

func NewQueue(cfg *config.RedisConfig) (*TaskQueue, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Activate and test the connection
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis queue: %w", err)
	}

	logging.Info("Connected to Redis task queue")

	return &TaskQueue{client: client}, nil
}

func (q *TaskQueue) Enqueue(taskType string, data interface{}, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	task := asynq.NewTask(taskType, payload)

	return q.client.Enqueue(task, opts...)
}

// EnqueueCritical routes a task to the critical queue, used for
// emergency broadcasts.
func (q *TaskQueue) EnqueueCritical(taskType string, data interface{}) (*asynq.TaskInfo, error) {
	return q.Enqueue(taskType, data, asynq.Queue("critical"))
}

func (q *TaskQueue) Close() error {
	return q.client.Close()
}

// EmailSender is what the worker needs from the SES service.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type Worker struct {
	server  *asynq.Server
	email   EmailSender
	queries *store.Store
	engine  *rbac.Engine
}

func NewWorker(cfg *config.RedisConfig, email EmailSender, queries *store.Store, engine *rbac.Engine) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logging.Error("process task failed", "type", task.Type(), "payload", string(task.Payload()), "error", err)
			}),
		},
	)

	return &Worker{
		server:  server,
		email:   email,
		queries: queries,
		engine:  engine,
	}
}

func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDelivery, w.HandleEmailDelivery)
	mux.HandleFunc(TypeEmergencyBroadcast, w.HandleEmergencyBroadcast)

	return w.server.Start(mux)
}

func (w *Worker) Close() {
	if w.server != nil {
		w.server.Shutdown()
	}
}

func (w *Worker) HandleEmailDelivery(ctx context.Context, t *asynq.Task) error {
	var p EmailDeliveryPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	logging.Info("Sending email", "to", p.To, "subject", p.Subject)
	if err := w.email.SendEmail(ctx, p.To, p.Subject, p.Body); err != nil {
		return fmt.Errorf("email.SendEmail failed: %w", err)
	}

	return nil
}

// HandleEmergencyBroadcast emails every staff member whose role can
// respond to emergencies. Individual delivery failures are logged and
// skipped so one bad address does not fail the whole broadcast.
func (w *Worker) HandleEmergencyBroadcast(ctx context.Context, t *asynq.Task) error {
	var p EmergencyBroadcastPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	emergency, err := w.queries.GetEmergency(ctx, p.EmergencyID)
	if err != nil {
		return fmt.Errorf("loading emergency %s: %w", p.EmergencyID, err)
	}

	responders, err := w.respondingUsers(ctx)
	if err != nil {
		return fmt.Errorf("loading responders: %w", err)
	}

	subject := fmt.Sprintf("[%s] Emergency reported at %s", emergency.Priority, emergency.Location)
	body := fmt.Sprintf("Priority: %s\nLocation: %s\n\n%s", emergency.Priority, emergency.Location, emergency.Description)

	sent := 0
	for _, u := range responders {
		if err := w.email.SendEmail(ctx, u.Email, subject, body); err != nil {
			logging.Error("emergency broadcast delivery failed", "to", u.Email, "emergency_id", p.EmergencyID, "error", err)
			continue
		}
		sent++
	}

	logging.Info("emergency broadcast complete", "emergency_id", p.EmergencyID, "recipients", sent)
	return nil
}

func (w *Worker) respondingUsers(ctx context.Context) ([]store.User, error) {
	var out []store.User
	for _, role := range rbac.AllRoles() {
		if !w.engine.HasPermission(role, rbac.RespondEmergency) {
			continue
		}
		users, err := w.queries.ListUsersByRole(ctx, role.String())
		if err != nil {
			return nil, err
		}
		out = append(out, users...)
	}
	return out, nil
}
