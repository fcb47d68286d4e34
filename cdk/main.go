package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type LeagueStackProps struct {
	awscdk.StackProps
}

func NewLeagueStack(scope constructs.Construct, id string, props *LeagueStackProps) awscdk.Stack {
	var stackProps awscdk.StackProps
	if props != nil {
		stackProps = props.StackProps
	}

	stack := awscdk.NewStack(scope, &id, &stackProps)

	archive := awss3.NewBucket(stack, jsii.String("SessionArchive"), &awss3.BucketProps{
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		Versioned:         jsii.Bool(true),
		RemovalPolicy:     awscdk.RemovalPolicy_RETAIN,
	})

	lambdaFn := awslambda.NewFunction(stack, jsii.String("LeagueApi"), &awslambda.FunctionProps{
		Runtime: awslambda.Runtime_PROVIDED_AL2023(),
		Handler: jsii.String("bootstrap"),
		Code:    awslambda.Code_FromAsset(jsii.String("../"), nil),
		Environment: &map[string]*string{
			"APP":                  jsii.String("prod"),
			"POSTGRES_DSN":         jsii.String(os.Getenv("POSTGRES_DSN")),
			"REDIS_ADDR":           jsii.String(os.Getenv("REDIS_ADDR")),
			"REDIS_PASSWORD":       jsii.String(os.Getenv("REDIS_PASSWORD")),
			"S3_BUCKET":            archive.BucketName(),
			"S3_REGION":            stack.Region(),
			"ADMIN_PASSWORD_HASH":  jsii.String(os.Getenv("ADMIN_PASSWORD_HASH")),
			"CORS_ALLOWED_ORIGINS": jsii.String(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
	})

	archive.GrantPut(lambdaFn, nil)

	api := awsapigateway.NewLambdaRestApi(stack, jsii.String("LeagueApiGateway"), &awsapigateway.LambdaRestApiProps{
		Handler: lambdaFn,
	})

	awscdk.NewCfnOutput(stack, jsii.String("ArchiveBucket"), &awscdk.CfnOutputProps{Value: archive.BucketName()})
	awscdk.NewCfnOutput(stack, jsii.String("ApiUrl"), &awscdk.CfnOutputProps{Value: api.Url()})

	return stack
}

func main() {
	app := awscdk.NewApp(nil)
	NewLeagueStack(app, "SaturdayLeagueStack", &LeagueStackProps{})
	app.Synth(nil)
}
