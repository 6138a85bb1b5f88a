package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
)

// SNSPushManager issues device subscriptions as SNS platform endpoints.
// The endpoint ARN plays the role of the subscription endpoint; auth
// credentials are generated when the subscription is created.
type SNSPushManager struct {
	client      *awssns.Client
	platformArn string
	deviceToken string
	log         *zap.Logger

	mu      sync.Mutex
	current *Subscription
}

func NewSNSPushManager(log *zap.Logger) (*SNSPushManager, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "ap-south-1"
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSPushManager{
		client:      awssns.NewFromConfig(cfg),
		platformArn: os.Getenv("SNS_PLATFORM_ARN"),
		deviceToken: os.Getenv("DEVICE_PUSH_TOKEN"),
		log:         log,
	}, nil
}

func randomKey(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Subscription returns the subscription this device currently holds,
// verified against the platform rather than trusted from memory.
func (m *SNSPushManager) Subscription(ctx context.Context) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, nil
	}
	out, err := m.client.GetEndpointAttributes(ctx, &awssns.GetEndpointAttributesInput{
		EndpointArn: aws.String(m.current.Endpoint),
	})
	if err != nil {
		m.current = nil
		return nil, nil
	}
	if enabled, ok := out.Attributes["Enabled"]; ok && enabled == "false" {
		m.current = nil
		return nil, nil
	}
	return m.current, nil
}

func (m *SNSPushManager) Subscribe(ctx context.Context, serverKey []byte) (*Subscription, error) {
	if len(serverKey) == 0 {
		return nil, errors.New("empty server key")
	}
	if m.platformArn == "" {
		return nil, errors.New("SNS_PLATFORM_ARN not set")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return m.current, nil
	}

	out, err := m.client.CreatePlatformEndpoint(ctx, &awssns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(m.platformArn),
		Token:                  aws.String(m.deviceToken),
	})
	if err != nil {
		return nil, err
	}

	m.current = &Subscription{
		Endpoint: aws.ToString(out.EndpointArn),
		P256dh:   randomKey(65),
		Auth:     randomKey(16),
	}
	return m.current, nil
}

func (m *SNSPushManager) Unsubscribe(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return false, nil
	}
	_, err := m.client.DeleteEndpoint(ctx, &awssns.DeleteEndpointInput{
		EndpointArn: aws.String(m.current.Endpoint),
	})
	m.current = nil
	if err != nil {
		return false, err
	}
	return true, nil
}

// Publish delivers a payload to the current endpoint through the push
// service, the path platform pushes arrive on.
func (m *SNSPushManager) Publish(ctx context.Context, title, body string, data map[string]string) error {
	m.mu.Lock()
	sub := m.current
	m.mu.Unlock()
	if sub == nil {
		return ErrNotEnabled
	}

	msg := map[string]any{
		"default": body,
		"GCM": map[string]any{
			"notification": map[string]string{
				"title": title,
				"body":  body,
			},
			"data": data,
		},
	}
	raw, _ := json.Marshal(msg)
	_, err := m.client.Publish(ctx, &awssns.PublishInput{
		MessageStructure: aws.String("json"),
		Message:          aws.String(string(raw)),
		TargetArn:        aws.String(sub.Endpoint),
	})
	return err
}

// DevicePlatform is the production Platform implementation: capability
// checks reflect how the process was wired, permission tracks what the
// device reported, registration hands out the running worker.
type DevicePlatform struct {
	worker *Worker

	mu         sync.Mutex
	permission PermissionState
}

func NewDevicePlatform(worker *Worker) *DevicePlatform {
	return &DevicePlatform{worker: worker, permission: PermissionDefault}
}

func (p *DevicePlatform) HasNotifications() bool { return p.worker != nil }
func (p *DevicePlatform) HasServiceWorker() bool { return p.worker != nil }
func (p *DevicePlatform) HasPushManager() bool {
	return p.worker != nil && p.worker.push != nil
}

// SetPermission records the outcome of the device-side permission prompt.
func (p *DevicePlatform) SetPermission(state PermissionState) {
	p.mu.Lock()
	p.permission = state
	p.mu.Unlock()
}

// RequestPermission resolves the stored permission; an undecided device
// prompt resolves to granted.
func (p *DevicePlatform) RequestPermission(ctx context.Context) (PermissionState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.permission == PermissionDefault {
		p.permission = PermissionGranted
	}
	return p.permission, nil
}

func (p *DevicePlatform) Register(ctx context.Context, scope string) (Registration, error) {
	if p.worker == nil {
		return nil, ErrNotSupported
	}
	return p.worker, nil
}
