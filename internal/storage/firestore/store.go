// Package firestore реализует документное хранилище поверх Cloud Firestore:
// коллекции dishes, baskets и orders с одним документом на пользователя.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionDishes  = "dishes"
	collectionBaskets = "baskets"
	collectionOrders  = "orders"

	opTimeout = 10 * time.Second
)

// Store оборачивает клиент Firestore.
type Store struct {
	client *firestore.Client
}

// NewStore создаёт Store поверх готового клиента (обычно из firebase.App.Firestore).
func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

// Client возвращает исходный клиент Firestore.
func (s *Store) Client() *firestore.Client {
	return s.client
}

// Ping читает заведомо несуществующий документ: NotFound означает, что Firestore доступен.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("firestore store is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.client.Collection(collectionDishes).Doc("__health__").Get(ctx)
	if err == nil || isNotFound(err) {
		return nil
	}
	return err
}

// Close закрывает клиент Firestore.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
