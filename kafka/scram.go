package kafka

import "github.com/xdg-go/scram"

// scramClient adapts xdg-go/scram to the SCRAMClient interface sarama
// invokes during the SASL handshake.
type scramClient struct {
	*scram.Client
	*scram.ClientConversation
	scram.HashGeneratorFcn
}

func newScramClient(hash scram.HashGeneratorFcn) *scramClient {
	return &scramClient{HashGeneratorFcn: hash}
}

func (c *scramClient) Begin(userName, password, authzID string) (err error) {
	c.Client, err = c.HashGeneratorFcn.NewClient(userName, password, authzID)
	if err != nil {
		return err
	}
	c.ClientConversation = c.Client.NewConversation()
	return nil
}

func (c *scramClient) Step(challenge string) (string, error) {
	return c.ClientConversation.Step(challenge)
}

func (c *scramClient) Done() bool {
	return c.ClientConversation.Done()
}
