package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"learnhub/config"
	"learnhub/db"
	"learnhub/models"
	"learnhub/structs"
	"learnhub/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var appConfig *config.Config

// SetConfig stores the loaded configuration for the controllers package
func SetConfig(cfg *config.Config) {
	appConfig = cfg
}

func SignUp(ctx *gin.Context) {
	var request structs.SignUpRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	if err := signUpWithCognito(request.Email, request.Password, ctx); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign up", "message": err.Error()})
		return
	}

	name := request.Name
	if name == "" {
		name = utils.ExtractNameFromEmail(request.Email)
	}

	// Create the app-side user row eagerly so catalog features work right
	// after email verification
	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	user := models.User{
		Email:     request.Email,
		Name:      name,
		Role:      models.RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := db.GetCollection("users").InsertOne(dbCtx, user); err != nil && !mongo.IsDuplicateKeyError(err) {
		log.Printf("Failed to create user row for %s: %v", request.Email, err)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Sign-up successful"})
}

func VerifyEmail(ctx *gin.Context) {
	var request structs.VerifyEmailRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	if err := verifyEmailWithCognito(request.Email, request.ConfirmationCode, ctx); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email", "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Email verification successful"})
}

func Login(ctx *gin.Context) {
	var request structs.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": "Check email and password format"})
		return
	}

	if err := loginWithCognito(request.Email, request.Password, ctx); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to sign in", "message": "Invalid email or password"})
		return
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := db.GetCollection("users").FindOne(dbCtx, bson.M{"email": request.Email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		// Cognito account exists but the app row is missing (e.g. created
		// before this backend); backfill it
		now := time.Now()
		user = models.User{
			Email:     request.Email,
			Name:      utils.ExtractNameFromEmail(request.Email),
			Role:      models.RoleStudent,
			CreatedAt: now,
			UpdatedAt: now,
		}
		result, insertErr := db.GetCollection("users").InsertOne(dbCtx, user)
		if insertErr != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}
		user.ID = result.InsertedID.(primitive.ObjectID)
	} else if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	token, err := utils.GenerateJWTToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Sign-in successful",
		"accessToken": token,
		"user": gin.H{
			"id":    user.ID.Hex(),
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

func ForgotPassword(ctx *gin.Context) {
	var request structs.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": "Check email format"})
		return
	}

	if err := initiateForgotPassword(request.Email, ctx); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initiate password reset", "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password reset initiated. Check your email for further instructions."})
}

func VerifyForgotPassword(ctx *gin.Context) {
	var request structs.VerifyForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	if err := confirmForgotPassword(request.Email, request.Code, request.NewPassword, ctx); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm password reset", "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password successfully changed"})
}

func cognitoClient(ctx context.Context) (*cognitoidentityprovider.Client, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(appConfig.Cognito.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %v", err)
	}
	return cognitoidentityprovider.NewFromConfig(awsCfg), nil
}

func signUpWithCognito(email, password string, ctx *gin.Context) error {
	client, err := cognitoClient(ctx)
	if err != nil {
		return err
	}

	secretHash := utils.GenerateSecretHash(email, appConfig.Cognito.AppClientId, appConfig.Cognito.AppClientSecret)

	input := cognitoidentityprovider.SignUpInput{
		ClientId:   aws.String(appConfig.Cognito.AppClientId),
		Password:   aws.String(password),
		SecretHash: aws.String(secretHash),
		Username:   aws.String(email),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("nickname"), Value: aws.String(utils.ExtractNameFromEmail(email))},
		},
	}

	if _, err := client.SignUp(ctx, &input); err != nil {
		log.Println("Error during sign-up:", err)
		return fmt.Errorf("sign-up failed: %v", err)
	}
	return nil
}

func verifyEmailWithCognito(email, confirmationCode string, ctx *gin.Context) error {
	client, err := cognitoClient(ctx)
	if err != nil {
		return err
	}

	secretHash := utils.GenerateSecretHash(email, appConfig.Cognito.AppClientId, appConfig.Cognito.AppClientSecret)

	input := cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(appConfig.Cognito.AppClientId),
		ConfirmationCode: aws.String(confirmationCode),
		Username:         aws.String(email),
		SecretHash:       aws.String(secretHash),
	}

	if _, err := client.ConfirmSignUp(ctx, &input); err != nil {
		log.Println("Error during email verification:", err)
		return fmt.Errorf("email verification failed: %v", err)
	}
	return nil
}

func loginWithCognito(email, password string, ctx *gin.Context) error {
	client, err := cognitoClient(ctx)
	if err != nil {
		return err
	}

	secretHash := utils.GenerateSecretHash(email, appConfig.Cognito.AppClientId, appConfig.Cognito.AppClientSecret)

	input := cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(appConfig.Cognito.AppClientId),
		AuthParameters: map[string]string{
			"USERNAME":    email,
			"PASSWORD":    password,
			"SECRET_HASH": secretHash,
		},
	}

	if _, err := client.InitiateAuth(ctx, &input); err != nil {
		return fmt.Errorf("authentication failed")
	}
	return nil
}

func initiateForgotPassword(email string, ctx *gin.Context) error {
	client, err := cognitoClient(ctx)
	if err != nil {
		return err
	}

	secretHash := utils.GenerateSecretHash(email, appConfig.Cognito.AppClientId, appConfig.Cognito.AppClientSecret)

	input := cognitoidentityprovider.ForgotPasswordInput{
		ClientId:   aws.String(appConfig.Cognito.AppClientId),
		Username:   aws.String(email),
		SecretHash: aws.String(secretHash),
	}

	if _, err := client.ForgotPassword(ctx, &input); err != nil {
		return fmt.Errorf("error initiating forgot password: %v", err)
	}
	return nil
}

func confirmForgotPassword(email, code, newPassword string, ctx *gin.Context) error {
	client, err := cognitoClient(ctx)
	if err != nil {
		return err
	}

	secretHash := utils.GenerateSecretHash(email, appConfig.Cognito.AppClientId, appConfig.Cognito.AppClientSecret)

	input := cognitoidentityprovider.ConfirmForgotPasswordInput{
		ClientId:         aws.String(appConfig.Cognito.AppClientId),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
		SecretHash:       aws.String(secretHash),
	}

	if _, err := client.ConfirmForgotPassword(ctx, &input); err != nil {
		return fmt.Errorf("error confirming forgot password: %v", err)
	}
	return nil
}
