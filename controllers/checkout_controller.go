package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"learnhub/db"
	"learnhub/models"
	"learnhub/services"
	"learnhub/utils"
	"learnhub/websocket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateCheckout turns the user's cart into a gateway order
func CreateCheckout(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cursor, err := db.GetCollection("cart_items").Find(ctx, bson.M{"userId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode cart"})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	var courseIDs []primitive.ObjectID
	var total int64
	currency := "INR"
	for _, item := range items {
		var course models.Course
		if err := db.GetCollection("courses").FindOne(ctx, bson.M{"_id": item.CourseID, "published": true}).Decode(&course); err != nil {
			continue
		}
		courseIDs = append(courseIDs, course.ID)
		total += course.Price
		currency = course.Currency
	}
	if len(courseIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No purchasable courses in cart"})
		return
	}

	receipt := "rcpt_" + uuid.NewString()
	payment := services.GetPaymentService()

	gatewayOrder, err := payment.CreateOrder(ctx, total, currency, receipt)
	if err != nil {
		log.Printf("Failed to create gateway order: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway unavailable"})
		return
	}

	order := models.Order{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		CourseIDs:      courseIDs,
		Amount:         total,
		Currency:       currency,
		Receipt:        receipt,
		GatewayOrderID: gatewayOrder.ID,
		Status:         models.OrderStatusCreated,
		CreatedAt:      time.Now(),
	}
	if _, err := db.GetCollection("orders").InsertOne(ctx, order); err != nil {
		log.Printf("Failed to save order: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orderId":        order.ID.Hex(),
		"gatewayOrderId": gatewayOrder.ID,
		"amount":         total,
		"currency":       currency,
		"keyId":          payment.KeyID(),
	})
}

// VerifyPayment checks the signature the gateway handed to the frontend after
// checkout and, on success, enrolls the user in everything they bought.
func VerifyPayment(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req struct {
		GatewayOrderID string `json:"razorpay_order_id" binding:"required"`
		PaymentID      string `json:"razorpay_payment_id" binding:"required"`
		Signature      string `json:"razorpay_signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !services.GetPaymentService().VerifyPaymentSignature(req.GatewayOrderID, req.PaymentID, req.Signature) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment signature verification failed"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var order models.Order
	err = db.GetCollection("orders").FindOne(ctx, bson.M{
		"gatewayOrderId": req.GatewayOrderID,
		"userId":         userID,
	}).Decode(&order)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if order.Status == models.OrderStatusPaid {
		// gateway retried or the frontend double-submitted; nothing to redo
		c.JSON(http.StatusOK, gin.H{"message": "Payment already processed", "orderId": order.ID.Hex()})
		return
	}

	capturePayment(ctx, &order, req.PaymentID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment verified",
		"orderId": order.ID.Hex(),
	})
}

// PaymentWebhook handles asynchronous gateway notifications. Deliveries are
// deduplicated on the gateway event id so retries cannot double-enroll.
func PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if !services.GetPaymentService().VerifyWebhookSignature(body, signature) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook signature verification failed"})
		return
	}

	var event struct {
		Event   string `json:"event"`
		EventID string `json:"event_id"`
		Payload struct {
			Payment struct {
				Entity struct {
					ID      string `json:"id"`
					OrderID string `json:"order_id"`
				} `json:"entity"`
			} `json:"payment"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	if event.Event != "payment.captured" {
		c.JSON(http.StatusOK, gin.H{"message": "Event ignored"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err = db.GetCollection("webhook_events").InsertOne(ctx, models.WebhookEvent{
		EventID:     event.EventID,
		EventType:   event.Event,
		Payload:     string(body),
		ProcessedAt: time.Now(),
	})
	if mongo.IsDuplicateKeyError(err) {
		c.JSON(http.StatusOK, gin.H{"message": "Event already processed"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record webhook"})
		return
	}

	var order models.Order
	err = db.GetCollection("orders").FindOne(ctx, bson.M{"gatewayOrderId": event.Payload.Payment.Entity.OrderID}).Decode(&order)
	if err != nil {
		log.Printf("Webhook for unknown order %s", event.Payload.Payment.Entity.OrderID)
		c.JSON(http.StatusOK, gin.H{"message": "Order not found"})
		return
	}

	if order.Status != models.OrderStatusPaid {
		capturePayment(ctx, &order, event.Payload.Payment.Entity.ID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Webhook processed"})
}

// capturePayment marks the order paid, writes enrollment rows, clears the
// cart, publishes the live events and emails the buyer. Live event publishing
// is fire-and-forget: a slow dashboard never delays checkout.
func capturePayment(ctx context.Context, order *models.Order, paymentID string) {
	now := time.Now()
	_, err := db.GetCollection("orders").UpdateOne(
		ctx,
		bson.M{"_id": order.ID},
		bson.M{"$set": bson.M{
			"status":    models.OrderStatusPaid,
			"paymentId": paymentID,
			"paidAt":    now,
		}},
	)
	if err != nil {
		log.Printf("Failed to mark order %s paid: %v", order.ID.Hex(), err)
		return
	}

	hub := websocket.LiveHub()
	hub.Publish(websocket.NewPaymentCaptured(paymentID, order.GatewayOrderID, order.Amount, order.Currency))

	var courseTitles []string
	for _, courseID := range order.CourseIDs {
		var course models.Course
		if err := db.GetCollection("courses").FindOne(ctx, bson.M{"_id": courseID}).Decode(&course); err != nil {
			log.Printf("Course %s missing during enrollment: %v", courseID.Hex(), err)
			continue
		}

		enrollment := models.Enrollment{
			UserID:           order.UserID,
			CourseID:         courseID,
			OrderID:          order.ID.Hex(),
			CompletedLessons: []string{},
			WatchedVideos:    []string{},
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if _, err := db.GetCollection("enrollments").InsertOne(ctx, enrollment); err != nil {
			if !mongo.IsDuplicateKeyError(err) {
				log.Printf("Failed to enroll user %s in course %s: %v", order.UserID.Hex(), courseID.Hex(), err)
			}
			continue
		}

		db.GetCollection("courses").UpdateOne(ctx, bson.M{"_id": courseID}, bson.M{"$inc": bson.M{"enrollCount": 1}})
		courseTitles = append(courseTitles, course.Title)

		hub.Publish(websocket.NewEnrollmentCreated(
			order.UserID.Hex(),
			courseID.Hex(),
			order.ID.Hex(),
			course.Price,
			course.Title,
		))
	}

	db.GetCollection("cart_items").DeleteMany(ctx, bson.M{
		"userId":   order.UserID,
		"courseId": bson.M{"$in": order.CourseIDs},
	})

	var buyer models.User
	if err := db.GetCollection("users").FindOne(ctx, bson.M{"_id": order.UserID}).Decode(&buyer); err == nil {
		go func() {
			if err := utils.SendPurchaseConfirmationEmail(buyer.Email, courseTitles, order.Amount, order.Currency); err != nil {
				log.Printf("Failed to send purchase email to %s: %v", buyer.Email, err)
			}
		}()
	}
}

// RefundOrder lets an admin refund a paid order through the gateway
func RefundOrder(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var order models.Order
	if err := db.GetCollection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.Status != models.OrderStatusPaid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only paid orders can be refunded"})
		return
	}

	if err := services.GetPaymentService().Refund(ctx, order.PaymentID, order.Amount); err != nil {
		log.Printf("Refund failed for order %s: %v", orderID.Hex(), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Gateway refund failed"})
		return
	}

	db.GetCollection("orders").UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": bson.M{"status": models.OrderStatusRefunded}})
	db.GetCollection("enrollments").DeleteMany(ctx, bson.M{"orderId": orderID.Hex()})

	c.JSON(http.StatusOK, gin.H{"message": "Order refunded"})
}
